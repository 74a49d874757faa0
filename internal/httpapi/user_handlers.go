package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"painel.org/internal/audit"
	"painel.org/internal/auth"
)

type createUserRequest struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Password    string          `json:"password"`
	Role        string          `json:"role"`
	Status      string          `json:"status"`
	Permissions map[string]bool `json:"permissions"`
}

type updateAccessRequest struct {
	Status      string          `json:"status"`
	Permissions map[string]bool `json:"permissions"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	if !a.ensurePermissions(w, r, auth.PermUsersManage) {
		return
	}
	users, err := a.auth.Users(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if users == nil {
		users = []*auth.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	if !a.ensurePermissions(w, r, auth.PermUsersManage) {
		return
	}
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := a.auth.Register(r.Context(), auth.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Status:      req.Status,
		Permissions: auth.PermissionSet(req.Permissions),
	}, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.create", map[string]any{
		"target_id": user.ID,
		"username":  user.Username,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/users/%d", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if idStr == "" || strings.Contains(idStr, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "user id must be a positive integer")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, id)
	case http.MethodPut:
		a.updateAccess(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id int64) {
	if !a.ensurePermissions(w, r, auth.PermUsersManage) {
		return
	}
	user, err := a.auth.User(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) updateAccess(w http.ResponseWriter, r *http.Request, id int64) {
	if !a.ensurePermissions(w, r, auth.PermUsersManage) {
		return
	}
	var req updateAccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err := a.auth.UpdateAccess(r.Context(), id, req.Status, auth.PermissionSet(req.Permissions))
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.update_access", map[string]any{
		"target_id": id,
		"status":    req.Status,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "updated",
	})
}
