package httpapi

import (
	"net/http"
	"strings"

	"painel.org/internal/auth"
)

// The plant-floor APIs take DD/MM/YYYY bounds; all these handlers accept
// year+month and convert to first/last day of the month.

func (a *API) handleShippedLoads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermPlantRead) {
		return
	}
	if a.bi == nil {
		writeError(w, r, http.StatusServiceUnavailable, "plant API not configured")
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start, end := period.Bounds()
	rows, err := a.bi.ShippedLoads(r.Context(), start, end)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleProjectedPieces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermPlantRead) {
		return
	}
	if a.bi == nil {
		writeError(w, r, http.StatusServiceUnavailable, "plant API not configured")
		return
	}
	site := strings.TrimSpace(r.URL.Query().Get("site"))
	if site == "" {
		writeError(w, r, http.StatusBadRequest, "site is required")
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start, end := period.Bounds()
	rows, err := a.bi.ProjectedPieces(r.Context(), start, end, site)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleSites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermPlantRead) {
		return
	}
	if a.bi == nil {
		writeError(w, r, http.StatusServiceUnavailable, "plant API not configured")
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start, end := period.Bounds()
	sites, err := a.bi.Sites(r.Context(), start, end)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	writeRows(w, sites)
}

func (a *API) handlePlantProduction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermPlantRead) {
		return
	}
	if a.plannix == nil {
		writeError(w, r, http.StatusServiceUnavailable, "plant API not configured")
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start, end := period.Bounds()
	rows, err := a.plannix.Production(r.Context(), start, end)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handlePlantAssembly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermPlantRead) {
		return
	}
	if a.plannix == nil {
		writeError(w, r, http.StatusServiceUnavailable, "plant API not configured")
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	start, end := period.Bounds()
	rows, err := a.plannix.Assembly(r.Context(), start, end)
	if err != nil {
		handleUpstreamError(w, r, err)
		return
	}
	writeRows(w, rows)
}
