package httpapi

import (
	"context"
	"net/http"
	"testing"

	"painel.org/internal/auth"
)

func TestLoginMissingBodyFields(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"username": "alice"},
		{"password": "hunter2"},
		{},
		{"username": "   ", "password": "hunter2"},
	}
	for _, payload := range cases {
		resp, body := env.do(t, http.MethodPost, "/v1/auth/login", "", payload)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400, got %d", payload, resp.StatusCode)
		}
		if body["error"] == "" || body["error"] == nil {
			t.Fatalf("payload %v: expected an error message", payload)
		}
	}
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "hunter2",
		"remember": "true",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

func TestLoginFailureResponsesMatch(t *testing.T) {
	env := newTestEnv(t)
	env.store.seed(t, "alice", "hunter2", nil)

	unknownResp, unknownBody := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "nobody", "password": "hunter2",
	})
	wrongResp, wrongBody := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})

	if unknownResp.StatusCode != http.StatusUnauthorized || wrongResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknownResp.StatusCode, wrongResp.StatusCode)
	}
	// The error text must not reveal which of the two checks failed.
	if unknownBody["error"] != "invalid credentials" || wrongBody["error"] != "invalid credentials" {
		t.Fatalf("failure messages leak detail: %v vs %v", unknownBody["error"], wrongBody["error"])
	}
}

func TestLoginMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/v1/auth/login", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", allow)
	}
}

// TestLoginLifecycle walks the full flow: authenticate, use the token on a
// protected route, then present an already-expired token.
func TestLoginLifecycle(t *testing.T) {
	env := newTestEnv(t)
	u := env.store.seed(t, "alice", "hunter2", auth.PermissionSet{
		auth.PermReportsRead: true,
		auth.PermUsersManage: true,
	})

	resp, body := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	if body["expires_at"] == nil {
		t.Fatal("no expiry in login response")
	}
	user, _ := body["user"].(map[string]any)
	if user == nil || user["id"] == nil {
		t.Fatalf("login response missing user summary: %v", body)
	}

	meResp, meBody := env.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", meResp.StatusCode)
	}
	if int64(meBody["user_id"].(float64)) != u.ID {
		t.Fatalf("me: expected user_id %d, got %v", u.ID, meBody["user_id"])
	}

	staleResp, staleBody := env.do(t, http.MethodGet, "/v1/auth/me", expiredToken(t, u.ID), nil)
	if staleResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", staleResp.StatusCode)
	}
	if staleBody["error"] != "token expired" {
		t.Fatalf("expired token: expected %q, got %v", "token expired", staleBody["error"])
	}
}

func TestPermissionSnapshotStaysUntilExpiry(t *testing.T) {
	env := newTestEnv(t)
	u := env.store.seed(t, "alice", "hunter2", auth.PermissionSet{auth.PermReportsRead: true})

	token := env.login(t, "alice", "hunter2")

	// Revoke everything in the store after the token was minted.
	if err := env.store.UpdateAccess(context.Background(), u.ID, auth.StatusActive, auth.PermissionSet{}); err != nil {
		t.Fatalf("UpdateAccess: %v", err)
	}

	// The outstanding token keeps its snapshot.
	resp, body := env.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	perms, _ := body["permissions"].([]any)
	if len(perms) != 1 {
		t.Fatalf("snapshot should survive store updates, got %v", body["permissions"])
	}
}
