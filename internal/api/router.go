package api

import (
	"net/http"
	"time"

	"blogcore/internal/api/handler"
	"blogcore/internal/api/middleware"
	"blogcore/internal/app/service"
	"blogcore/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	tokens *security.TokenService,
	authService *service.AuthService,
	authorService *service.AuthorService,
	bootstrapService *service.BootstrapService,
	adminSetupEnabled bool,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Token extraction + verification for the whole tree. Tokens are
	// accepted from the Authorization header or the auth_token cookie;
	// enforcement happens per-group via Authenticator.
	r.Use(middleware.Verifier(tokens))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService, tokens)
		v1.Route("/auth", func(auth chi.Router) {
			// Public: register, login, secret-gated admin registration
			authHandler.RegisterRoutes(auth)

			auth.Group(func(protected chi.Router) {
				protected.Use(middleware.Authenticator)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		// First-admin setup is mounted only while explicitly enabled;
		// a disabled deployment does not even expose the route.
		if adminSetupEnabled {
			adminSetupHandler := handler.NewAdminSetupHandler(bootstrapService)
			v1.Route("/admin-setup", adminSetupHandler.RegisterRoutes)
		}

		authorHandler := handler.NewAuthorHandler(authorService)
		v1.Route("/authors", func(authors chi.Router) {
			authors.Use(middleware.Authenticator)
			authorHandler.RegisterRoutes(authors)
		})
	})

	return r
}
