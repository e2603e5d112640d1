package routes

import (
	"net/http"
	"time"

	"github.com/ead/authuser/app"
	"github.com/ead/authuser/handlers"
	"github.com/ead/authuser/middleware"
	"github.com/ead/authuser/models"
	"github.com/ead/authuser/utils"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	roleAdmin = string(models.RoleAdmin)
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	authz := deps.Authorization

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every request is authenticated or left anonymous; routes decide what anonymous may reach.
	r.Use(deps.AuthFilter.Authenticate)

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.With(authz.RequireRole(roleAdmin)).Post("/signup/admin", deps.AuthHandler.HandleSignupAdmin)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authz.RequireAuthenticated)

		r.With(authz.RequireRole(roleAdmin)).Get("/", deps.UserHandler.HandleList)
		r.Get("/me", deps.UserHandler.HandleMe)
		r.With(authz.RequireRole(roleAdmin)).Post("/instructors/subscription", deps.UserHandler.HandlePromoteInstructor)
		r.With(authz.RequireRole(roleAdmin)).Delete("/courses/{"+handlers.CourseIDParam+"}", deps.UserCourseHandler.HandleDeleteByCourse)

		r.Route("/{"+handlers.UserIDParam+"}", func(r chi.Router) {
			r.Use(authz.RequireSelfOrRole(handlers.UserIDParam, roleAdmin))

			r.Get("/", deps.UserHandler.HandleGet)
			r.Put("/", deps.UserHandler.HandleUpdate)
			r.Delete("/", deps.UserHandler.HandleDelete)
			r.Put("/password", deps.UserHandler.HandleUpdatePassword)
			r.Put("/image", deps.UserHandler.HandleUpdateImage)
			r.Get("/courses", deps.UserCourseHandler.HandleList)
			r.Post("/courses", deps.UserCourseHandler.HandleSubscribe)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
