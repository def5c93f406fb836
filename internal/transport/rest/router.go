package rest

import (
	"log/slog"
	"net/http"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/auth"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/eventstaff/attendance/internal/dashboard"
	"github.com/eventstaff/attendance/internal/employee"
	"github.com/eventstaff/attendance/internal/event"
	"github.com/eventstaff/attendance/internal/timerecord"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/eventstaff/attendance/internal/transport/middleware"
	"github.com/eventstaff/attendance/internal/transport/openapi"
	"github.com/eventstaff/attendance/internal/transport/swagger"
	"github.com/eventstaff/attendance/internal/user"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies carries everything the router mounts. Nil handlers are skipped.
type Dependencies struct {
	Config    *internal.Config
	Logger    *slog.Logger
	Base      *transport.BaseHandler
	Health    *HealthHandler
	Resolver  middleware.PrincipalResolver
	Validator *openapi.Validator

	Auth       *auth.Handler
	Users      *user.Handler
	Events     *event.Handler
	Employees  *employee.Handler
	TimeRecord *timerecord.Handler
	Dashboard  *dashboard.Handler
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	cfg := deps.Config
	base := deps.Base

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	if cfg.Observability.Metrics.Enabled {
		router.Use(middleware.Metrics)
		router.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	// OpenAPI document at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, cfg.Server.OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	if deps.Health != nil {
		router.Get("/health", deps.Health.Health)
		router.Get("/ping", deps.Health.Ping)
	}

	staff := []string{coreuser.RoleEmployee, coreuser.RoleManager, coreuser.RoleAdmin}
	managers := []string{coreuser.RoleManager, coreuser.RoleAdmin}

	router.Route("/api", func(r chi.Router) {
		if deps.Validator != nil {
			r.Use(deps.Validator.Middleware)
		}

		// Auth routes
		r.Route("/auth", func(ar chi.Router) {
			if deps.Auth != nil {
				ar.Post("/login", deps.Auth.Login)
				ar.Post("/refresh", deps.Auth.RefreshToken)
				ar.Post("/logout", deps.Auth.Logout)
			}
			if deps.Users != nil {
				ar.Post("/register", deps.Users.Register)
			}
			if deps.Auth != nil {
				ar.With(middleware.Authenticate(deps.Resolver, base)).Get("/me", deps.Auth.Me)
			}
		})

		// Everything below requires a valid access token
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(deps.Resolver, base))

			if deps.Events != nil {
				pr.Get("/events", deps.Events.List)
				pr.Get("/events/{id}", deps.Events.Get)
				pr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequireRoles(base, managers...))
					mr.Post("/events", deps.Events.Create)
					mr.Put("/events/{id}", deps.Events.Update)
					mr.Patch("/events/{id}", deps.Events.Update)
					mr.Delete("/events/{id}", deps.Events.Delete)
				})
			}

			if deps.Employees != nil {
				pr.Get("/employees", deps.Employees.List)
				pr.Get("/employees/{id}", deps.Employees.Get)
				pr.Get("/employees/{id}/badge", deps.Employees.Badge)
				pr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequireRoles(base, managers...))
					mr.Post("/employees", deps.Employees.Create)
					mr.Put("/employees/{id}", deps.Employees.Update)
					mr.Patch("/employees/{id}", deps.Employees.Update)
					mr.Delete("/employees/{id}", deps.Employees.Delete)
				})
			}

			if deps.TimeRecord != nil {
				pr.Get("/time-records", deps.TimeRecord.List)
				pr.Group(func(sr chi.Router) {
					sr.Use(middleware.RequireRoles(base, staff...))
					sr.Post("/time-records", deps.TimeRecord.Create)
					sr.With(middleware.RateLimit(cfg.Attendance.ScanRatePerSecond, cfg.Attendance.ScanBurst, base)).
						Post("/scan", deps.TimeRecord.Scan)
				})
			}

			if deps.Dashboard != nil {
				pr.Get("/stats", deps.Dashboard.Stats)
				pr.Get("/recent-activity", deps.Dashboard.RecentActivity)
				pr.Get("/shifts", deps.Dashboard.Shifts)
			}

			if deps.Users != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.With(middleware.RequireRoles(base, coreuser.RoleAdmin)).Get("/", deps.Users.List)
					ur.With(middleware.RequireRoles(base, coreuser.RoleAdmin)).Post("/", deps.Users.Create)
					ur.Get("/{id}", deps.Users.Get)
					ur.Put("/{id}", deps.Users.Update)
					ur.Patch("/{id}", deps.Users.Update)
					ur.With(middleware.RequireRoles(base, coreuser.RoleAdmin)).Delete("/{id}", deps.Users.Delete)
				})
			}
		})
	})
}
