package http

import (
	"net/http"

	"github.com/atinyakov/TaskKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler that serves the TaskKeeper API.
//
// Routes:
//
//	POST   /api/auth/signup        → authHandler.SignUp
//	POST   /api/auth/signin        → authHandler.SignIn
//	GET    /api/tasks              → taskHandler.List
//	POST   /api/tasks              → taskHandler.Create
//	GET    /api/tasks/{id}         → taskHandler.Get
//	PATCH  /api/tasks/{id}/status  → taskHandler.UpdateStatus
//	DELETE /api/tasks/{id}         → taskHandler.Delete
//
// Every /api/tasks route requires a bearer token checked by verifier.
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))

			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Get("/{id}", taskHandler.Get)
			r.Patch("/{id}/status", taskHandler.UpdateStatus)
			r.Delete("/{id}", taskHandler.Delete)
		})
	})

	return r
}
