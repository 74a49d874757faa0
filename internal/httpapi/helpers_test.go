package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"painel.org/internal/auth"
)

const testSecret = "httpapi-test-secret"

type memStore struct {
	users  map[string]*auth.User
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*auth.User{}, nextID: 1}
}

func (m *memStore) seed(t *testing.T, username, password string, perms auth.PermissionSet) *auth.User {
	t.Helper()
	digest, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &auth.User{
		ID:           m.nextID,
		Username:     username,
		DisplayName:  username,
		Role:         "viewer",
		Status:       auth.StatusActive,
		Permissions:  perms,
		PasswordHash: digest,
	}
	if u.Permissions == nil {
		u.Permissions = auth.PermissionSet{}
	}
	m.nextID++
	m.users[username] = u
	return u
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) Find(_ context.Context, id int64) (*auth.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			cp.PasswordHash = ""
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) List(_ context.Context) ([]*auth.User, error) {
	out := make([]*auth.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, u *auth.User, digest string) (int64, error) {
	if _, ok := m.users[u.Username]; ok {
		return 0, auth.ErrAlreadyExists
	}
	cp := *u
	cp.ID = m.nextID
	cp.PasswordHash = digest
	m.nextID++
	m.users[cp.Username] = &cp
	return cp.ID, nil
}

func (m *memStore) UpdateAccess(_ context.Context, id int64, status string, perms auth.PermissionSet) error {
	for _, u := range m.users {
		if u.ID == id {
			u.Status = status
			u.Permissions = perms
			return nil
		}
	}
	return auth.ErrNotFound
}

type testEnv struct {
	store  *memStore
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	tokens, err := auth.NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	svc, err := auth.NewService(store, tokens)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	api := New(Options{
		Auth:          svc,
		Version:       "test",
		RateBurst:     1000,
		RatePerSecond: 1000,
	})
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return &testEnv{store: store, server: server}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(data) > 0 {
		// Array responses are not maps; callers that need them decode
		// separately. Ignore the error here.
		_ = json.Unmarshal(data, &decoded)
	}
	return resp, decoded
}

// login runs the credential flow and returns the issued token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d: %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response carried no token")
	}
	return token
}

// expiredToken mints a token whose lifetime already lapsed, signed with the
// same secret the server verifies against.
func expiredToken(t *testing.T, userID int64) string {
	t.Helper()
	past := time.Now().Add(-2 * time.Hour)
	issuer, err := auth.NewTokens(testSecret, time.Hour, auth.WithTokenClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, _, err := issuer.Issue(userID, "viewer", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return raw
}
