package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
	"shop-backend/internal/service"
	"shop-backend/pkg/apierror"
)

const oauthStateCookie = "oauth_state"

type socialProvider interface {
	NewState() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.SocialProfile, error)
}

type AuthHandler struct {
	service     *service.AuthService
	google      socialProvider
	frontendURL string
}

func NewAuthHandler(service *service.AuthService, google socialProvider, frontendURL string) *AuthHandler {
	return &AuthHandler{
		service:     service,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload model.SignUpRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.SignUp(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *AuthHandler) SignUpAdmin(w http.ResponseWriter, r *http.Request) {
	var payload model.SignUpRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.SignUpAdmin(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload model.SignInRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.SignIn(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.service.SignOut(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"signed_out": true}, nil)
}

// Refresh reads the refresh token from the Authorization header. It is not
// behind RequireAuth since that guard accepts access tokens only.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.service.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

// Claims echoes the caller's verified identity.
func (h *AuthHandler) Claims(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	writeSuccess(w, http.StatusOK, claims, nil)
}

func (h *AuthHandler) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, model.RoleAdmin)
}

func (h *AuthHandler) VerifyCustomer(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, model.RoleCustomer)
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, role model.Role) {
	user, err := h.service.VerifyCode(r.Context(), role, chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apierror.New("PROVIDER_UNAVAILABLE", "google sign-in is not configured", "", http.StatusServiceUnavailable))
		return
	}

	state := h.google.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/users/google-auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleRedirect completes the provider round trip and hands the session to
// the front end as query parameters.
func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apierror.New("PROVIDER_UNAVAILABLE", "google sign-in is not configured", "", http.StatusServiceUnavailable))
		return
	}

	query := r.URL.Query()
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeError(w, apierror.Unauthorized("not authorized"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/users/google-auth", MaxAge: -1})

	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		writeError(w, apierror.Unauthorized("not authorized"))
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, apierror.Unauthorized("not authorized"))
		return
	}

	result, err := h.service.SocialLogin(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	values := url.Values{}
	values.Set("name", result.Name)
	values.Set("email", result.Email)
	values.Set("status", string(result.Status))
	values.Set("role", string(result.Role))
	values.Set("accessToken", result.AccessToken)
	values.Set("refreshToken", result.RefreshToken)
	values.Set("isNew", strconv.FormatBool(result.IsNew))
	values.Set("userId", result.UserID)

	http.Redirect(w, r, h.frontendURL+"/?"+values.Encode(), http.StatusFound)
}
