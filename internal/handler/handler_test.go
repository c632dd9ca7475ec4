package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
	"shop-backend/internal/repository/memory"
	"shop-backend/internal/service"
	"shop-backend/internal/token"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) SendVerificationCode(_ context.Context, email string, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

type avatarSink struct {
	mu   sync.Mutex
	keys []string
}

func (s *avatarSink) Put(_ context.Context, key string, _ string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "/uploads/" + key, nil
}

type testEnv struct {
	router   chi.Router
	auth     *service.AuthService
	users    *memory.UserRepository
	sessions *memory.SessionRepository
	mailer   *codeMailer
	avatars  *avatarSink
}

func newTestEnv(t *testing.T, google socialProvider) *testEnv {
	t.Helper()

	issuer, err := token.NewIssuer("handler-secret", "shop", 2*time.Minute, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionRepository(),
		mailer:   &codeMailer{},
		avatars:  &avatarSink{},
	}
	audit := service.NewAuditService(nil)
	env.auth = service.NewAuthService(env.users, env.sessions, issuer, env.mailer, audit, 4)

	authHandler := NewAuthHandler(env.auth, google, "http://front.test")
	userHandler := NewUserHandler(service.NewUserService(env.users, env.avatars, audit), 1<<20)
	commentHandler := NewCommentHandler(service.NewCommentService(memory.NewCommentRepository(), audit, nil))
	guard := middleware.NewAuthMiddleware(env.auth)
	adminOnly := guard.RequireRoles(model.RoleAdmin)

	r := chi.NewRouter()
	r.Post("/users/sign-up", authHandler.SignUp)
	r.Post("/users/sign-in", authHandler.SignIn)
	r.Get("/users/refresh", authHandler.Refresh)
	r.With(guard.RequireAuth).Get("/users/sign-out", authHandler.SignOut)
	r.With(guard.RequireAuth, adminOnly).Get("/users", authHandler.Claims)
	r.With(guard.RequireAuth, adminOnly).Post("/users/admin/sign-up", authHandler.SignUpAdmin)
	r.Get("/users/admin/verify/{code}", authHandler.VerifyAdmin)
	r.Get("/users/google-auth", authHandler.GoogleAuth)
	r.Get("/users/google-auth/redirect", authHandler.GoogleRedirect)
	r.With(guard.RequireAuth).Get("/users/get", userHandler.Current)
	r.With(guard.RequireAuth).Post("/users/up-date/{id}", userHandler.Update)
	r.With(guard.RequireAuth).Post("/users/{id}/follow", userHandler.Follow)
	r.With(guard.OptionalAuth).Get("/comments", commentHandler.List)
	r.With(guard.RequireAuth).Post("/comments", commentHandler.Create)
	r.With(guard.RequireAuth).Post("/comments/{id}/like", commentHandler.ToggleLike)
	r.With(guard.RequireAuth).Delete("/comments/{id}", commentHandler.Delete)
	env.router = r

	return env
}

func (e *testEnv) do(t *testing.T, method string, path string, body any, accessToken string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (e *testEnv) signUpAndIn(t *testing.T, email string) model.SignInResult {
	t.Helper()

	rec, _ := e.do(t, http.MethodPost, "/users/sign-up", model.SignUpRequest{Email: email, Password: "pw123456", Role: "customer"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body := e.do(t, http.MethodPost, "/users/sign-in", model.SignInRequest{Email: email, Password: "pw123456"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.SignInResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	return result
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
