package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/activity"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/auth"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/httpx"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/store"
)

type memObjects struct{ keys []string }

func (m *memObjects) Upload(_ context.Context, key string, _ []byte, _ string) error {
	m.keys = append(m.keys, key)
	return nil
}

func newTestServer(t *testing.T, objects activity.ObjectStore) *httptest.Server {
	t.Helper()
	return newTestServerProxy(t, objects, false)
}

func newTestServerProxy(t *testing.T, objects activity.ObjectStore, trustProxy bool) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	logger := logging.Nop()

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("router-test-secret"), "HS256", time.Hour)
	require.NoError(t, err)

	recorder := activity.NewRecorder(st, nil, logger)
	var archiver *activity.Archiver
	if objects != nil {
		archiver = activity.NewArchiver(recorder, objects)
	}

	svc := auth.NewService(st, hasher, tokens)
	srv := httptest.NewServer(NewRouter(Deps{
		Auth:              auth.NewHandler(svc, recorder, true, logger),
		Activity:          activity.NewHandler(recorder, archiver, logger),
		Guard:             auth.NewGuard(tokens, st),
		Logger:            logger,
		AllowedOrigins:    []string{"http://localhost:3000"},
		TrustProxyHeaders: trustProxy,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func login(t *testing.T, srv *httptest.Server, username, password, role string) string {
	t.Helper()
	resp, _ := do(t, srv, http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": password, "role": role,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Role        string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "bearer", out.TokenType)
	require.Equal(t, role, out.Role)
	return out.AccessToken
}

func errCode(t *testing.T, body []byte) string {
	t.Helper()
	var eb httpx.ErrorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	return eb.Error.Code
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestRouter_RegisterLoginProfile(t *testing.T) {
	srv := newTestServer(t, nil)
	token := login(t, srv, "alice", "pw1", "user")

	resp, body := do(t, srv, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Welcome!","user":"alice","role":"user"}`, string(body))

	resp, body = do(t, srv, http.MethodPost, "/register", "", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, httpx.CodeUserAlreadyExists, errCode(t, body))
}

func TestRouter_Unauthenticated(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/profile", "/admin/dashboard", "/logs"} {
		resp, body := do(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, httpx.CodeUnauthenticated, errCode(t, body), path)

		resp, _ = do(t, srv, http.MethodGet, path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRouter_AdminOnly(t *testing.T) {
	srv := newTestServer(t, nil)
	userToken := login(t, srv, "user1", "pw", "user")
	adminToken := login(t, srv, "admin1", "pw", "admin")

	for _, path := range []string{"/admin/dashboard", "/logs"} {
		resp, body := do(t, srv, http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		assert.Equal(t, httpx.CodeForbidden, errCode(t, body), path)
	}

	resp, body := do(t, srv, http.MethodGet, "/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Admin Panel Access Granted","user":"admin1"}`, string(body))
}

func TestRouter_LoginFailure(t *testing.T) {
	srv := newTestServer(t, nil)
	login(t, srv, "alice", "pw1", "user")

	r1, b1 := do(t, srv, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "nope"})
	r2, b2 := do(t, srv, http.MethodPost, "/login", "", map[string]string{"username": "nobody", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, r1.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, r2.StatusCode)
	assert.Equal(t, string(b1), string(b2))
}

func TestRouter_CollectThenList(t *testing.T) {
	srv := newTestServer(t, nil)
	adminToken := login(t, srv, "admin1", "pw", "admin")

	before := time.Now().Add(-time.Second)
	resp, body := do(t, srv, http.MethodPost, "/collect-log", "", map[string]string{
		"username": "alice", "action": "file_download", "details": "q3.xlsx", "device": "laptop",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var created struct {
		LogID string `json:"log_id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body = do(t, srv, http.MethodGet, "/logs", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs []models.LogEntry
	require.NoError(t, json.Unmarshal(body, &logs))

	var found *models.LogEntry
	actions := make([]string, 0, len(logs))
	for i := range logs {
		actions = append(actions, logs[i].Action)
		if logs[i].ID == created.LogID {
			found = &logs[i]
		}
	}
	require.NotNil(t, found, "collected entry is listed")
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "q3.xlsx", found.Details)
	assert.True(t, found.Timestamp.After(before), "timestamp is assigned by the server")
	assert.NotEmpty(t, found.IPAddress)

	assert.Contains(t, actions, auth.ActionRegister)
	assert.Contains(t, actions, auth.ActionLoginSuccess)
}

func TestRouter_Archive(t *testing.T) {
	srv := newTestServer(t, nil)
	adminToken := login(t, srv, "admin1", "pw", "admin")
	resp, _ := do(t, srv, http.MethodPost, "/admin/logs/archive", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "route is absent without object storage")

	objects := &memObjects{}
	srv = newTestServer(t, objects)
	adminToken = login(t, srv, "admin1", "pw", "admin")
	userToken := login(t, srv, "user1", "pw", "user")

	resp, _ = do(t, srv, http.MethodPost, "/admin/logs/archive", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/admin/logs/archive", adminToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.Len(t, objects.keys, 1)
	assert.Contains(t, string(body), objects.keys[0])
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func collectedIP(t *testing.T, srv *httptest.Server, forwarded string) string {
	t.Helper()
	adminToken := login(t, srv, "admin1", "pw", "admin")

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{"username": "alice", "action": "ip-check"}))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/collect-log", &buf)
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", forwarded)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/logs", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs []models.LogEntry
	require.NoError(t, json.Unmarshal(body, &logs))
	for _, e := range logs {
		if e.Action == "ip-check" {
			return e.IPAddress
		}
	}
	t.Fatal("collected entry not listed")
	return ""
}

func TestRouter_ForwardedHeadersIgnoredByDefault(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, "127.0.0.1", collectedIP(t, srv, "198.51.100.9"))
}

func TestRouter_ForwardedHeadersTrustedBehindProxy(t *testing.T) {
	srv := newTestServerProxy(t, nil, true)
	assert.Equal(t, "198.51.100.9", collectedIP(t, srv, "198.51.100.9"))
}
