package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/config"
	"shop-backend/internal/handler"
	"shop-backend/internal/mailer"
	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
	"shop-backend/internal/repository/memory"
	"shop-backend/internal/service"
	"shop-backend/internal/storage"
	"shop-backend/internal/token"
)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func newTestServer(t *testing.T, authRPM int) (*httptest.Server, *service.AuthService) {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     -1,
		AuthRateLimitRPM: authRPM,
		MaxUploadSize:    1 << 20,
	}

	issuer, err := token.NewIssuer("router-secret", "shop", 2*time.Minute, time.Hour)
	require.NoError(t, err)

	uploads, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	specPath := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("openapi: 3.0.3\n"), 0o600))

	users := memory.NewUserRepository()
	audit := service.NewAuditService(nil)
	authService := service.NewAuthService(users, memory.NewSessionRepository(), issuer, mailer.LogMailer{}, audit, 4)

	h := New(cfg, middleware.NewAuthMiddleware(authService), Handlers{
		Auth:    handler.NewAuthHandler(authService, nil, "http://front.test"),
		User:    handler.NewUserHandler(service.NewUserService(users, uploads, audit), cfg.MaxUploadSize),
		Comment: handler.NewCommentHandler(service.NewCommentService(memory.NewCommentRepository(), audit, nil)),
		Audit:   handler.NewAuditHandler(audit),
		Docs:    handler.NewDocsHandler(specPath),
		Uploads: uploads.Handler(),
	})

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	_, err = uploads.Put(context.Background(), "avatars/seed.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)

	return server, authService
}

func call(t *testing.T, method string, url string, body any, bearer string) (*http.Response, response) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out response
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestCustomerSessionLifecycle(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, 1000)

	resp, body := call(t, http.MethodPost, server.URL+"/users/sign-up", model.SignUpRequest{Email: "a@shop.com", Password: "pw123456", Role: "customer"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)
	var created map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "customer", created["role"])
	assert.Equal(t, "a@shop.com", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "verificationCode")

	resp, body = call(t, http.MethodPost, server.URL+"/users/sign-in", model.SignInRequest{Email: "a@shop.com", Password: "pw123456"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var signIn model.SignInResult
	require.NoError(t, json.Unmarshal(body.Data, &signIn))
	assert.Equal(t, model.RoleCustomer, signIn.Role)

	resp, _ = call(t, http.MethodGet, server.URL+"/users/get", nil, signIn.Tokens.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, http.MethodGet, server.URL+"/users", nil, signIn.Tokens.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	resp, body = call(t, http.MethodGet, server.URL+"/users/refresh", nil, signIn.Tokens.RefreshToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(body.Data, &pair))

	resp, _ = call(t, http.MethodGet, server.URL+"/users/refresh", nil, signIn.Tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, server.URL+"/users/sign-out", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, server.URL+"/users/get", nil, pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, server.URL+"/users/refresh", nil, pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	server, authService := newTestServer(t, 1000)
	require.NoError(t, authService.SeedAdmin(context.Background(), "root@shop.com", "rootpass"))

	resp, body := call(t, http.MethodPost, server.URL+"/users/sign-in", model.SignInRequest{Email: "root@shop.com", Password: "rootpass", Role: "admin"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var admin model.SignInResult
	require.NoError(t, json.Unmarshal(body.Data, &admin))

	resp, _ = call(t, http.MethodGet, server.URL+"/users", nil, admin.Tokens.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, http.MethodGet, server.URL+"/users/list", nil, admin.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list model.UserList
	require.NoError(t, json.Unmarshal(body.Data, &list))
	assert.Len(t, list.Users, 1)

	resp, body = call(t, http.MethodGet, server.URL+"/audit", nil, admin.Tokens.AccessToken)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "AUDIT_UNAVAILABLE", body.Error.Code)

	resp, _ = call(t, http.MethodPost, server.URL+"/users/admin/sign-up", model.SignUpRequest{Email: "ops@shop.com", Password: "opspass1"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAmbientRoutes(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, 1000)

	resp, _ := call(t, http.MethodGet, server.URL+"/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, _ = call(t, http.MethodGet, server.URL+"/openapi.yaml", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, server.URL+"/uploads/avatars/seed.jpg", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, server.URL+"/uploads/avatars/", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignInRateLimited(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, 2)
	creds := model.SignInRequest{Email: "nobody@shop.com", Password: "pw123456"}

	for i := 0; i < 2; i++ {
		resp, _ := call(t, http.MethodPost, server.URL+"/users/sign-in", creds, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp, _ := call(t, http.MethodPost, server.URL+"/users/sign-in", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
