package http

import (
	"log/slog"

	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	"github.com/cmlabs-hris/crm-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, userRepo user.UserRepository, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(JWTService.Verifier())
			r.Use(middleware.AuthRequired)
			r.Use(middleware.ResolveUser(userRepo))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", attendanceHandler.Mark)
				r.Get("/user/{userId}", attendanceHandler.GetUser)
				r.Get("/team/{teamId}", attendanceHandler.GetTeam)
				r.Get("/teams/summary", attendanceHandler.TeamsSummary)

				r.Route("/all-members", func(r chi.Router) {
					r.Get("/", attendanceHandler.AllMembers)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/export", attendanceHandler.ExportAllMembers)
					})
				})

				r.Patch("/{attendanceId}", attendanceHandler.Update)
			})
		})
	})
	return r
}
