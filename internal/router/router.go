package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/config"
	"shop-backend/internal/handler"
	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Comment *handler.CommentHandler
	Audit   *handler.AuditHandler
	Docs    *handler.DocsHandler
	// Uploads serves locally stored avatars; nil when avatars live in S3.
	Uploads http.Handler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	if h.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", h.Uploads))
	}

	requireAuth := authMiddleware.RequireAuth
	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)

	timeout := middleware.Timeout(cfg.RequestTimeout)

	r.Route("/users", func(users chi.Router) {
		users.Use(timeout)

		users.Post("/sign-up", h.Auth.SignUp)
		users.Post("/sign-in", h.Auth.SignIn)
		users.Get("/refresh", h.Auth.Refresh)
		users.With(requireAuth).Get("/sign-out", h.Auth.SignOut)
		users.Get("/google-auth", h.Auth.GoogleAuth)
		users.Get("/google-auth/redirect", h.Auth.GoogleRedirect)
		users.Get("/admin/verify/{code}", h.Auth.VerifyAdmin)
		users.Get("/customer/verify/{code}", h.Auth.VerifyCustomer)
		users.With(requireAuth, adminOnly).Post("/admin/sign-up", h.Auth.SignUpAdmin)

		users.With(requireAuth, adminOnly).Get("/", h.Auth.Claims)
		users.With(requireAuth, adminOnly).Get("/list", h.User.List)
		users.With(requireAuth).Get("/get", h.User.Current)
		users.With(requireAuth).Get("/get/user-customer-info", h.User.CustomerInfo)
		users.With(requireAuth).Post("/up-date/{id}", h.User.Update)
		users.With(requireAuth).Post("/{id}/follow", h.User.Follow)
		users.With(requireAuth).Delete("/{id}/follow", h.User.Unfollow)
	})

	r.Route("/comments", func(comments chi.Router) {
		// http.TimeoutHandler cannot flush.
		comments.With(middleware.StreamingTimeout(cfg.StreamMaxLifetime, cfg.StreamIdleTimeout)).Get("/stream", h.Comment.Stream)

		comments.Group(func(c chi.Router) {
			c.Use(timeout)

			c.With(authMiddleware.OptionalAuth).Get("/", h.Comment.List)
			c.With(authMiddleware.OptionalAuth).Get("/{id}/replies", h.Comment.Replies)
			c.With(requireAuth).Post("/", h.Comment.Create)
			c.With(requireAuth).Post("/{id}/like", h.Comment.ToggleLike)
			c.With(requireAuth).Delete("/{id}", h.Comment.Delete)
		})
	})

	r.With(timeout, requireAuth, adminOnly).Get("/audit", h.Audit.List)

	return r
}
