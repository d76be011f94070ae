package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/crm-attendance/internal/config"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/team"
	"github.com/cmlabs-hris/crm-attendance/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/crm-attendance/internal/handler/http"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/crm-attendance/internal/pkg/logger"
	"github.com/cmlabs-hris/crm-attendance/internal/repository/mongodb"
	"github.com/cmlabs-hris/crm-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/crm-attendance/internal/service/attendance"
	"github.com/cmlabs-hris/crm-attendance/migrations"
)

type repositories struct {
	attendance attendance.AttendanceRepository
	users      user.UserRepository
	teams      team.TeamRepository
	close      func(context.Context)
}

// openRepositories connects to the configured backend and prepares its
// schema or indexes.
func openRepositories(ctx context.Context, cfg *config.Config, migrate bool) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		db, err := database.NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return repositories{}, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = db.Close(ctx)
			return repositories{}, fmt.Errorf("ensure indexes: %w", err)
		}
		return repositories{
			attendance: mongodb.NewAttendanceRepository(db),
			users:      mongodb.NewUserRepository(db),
			teams:      mongodb.NewTeamRepository(db),
			close:      func(ctx context.Context) { _ = db.Close(ctx) },
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return repositories{}, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err := migrations.Apply(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("apply migrations: %w", err)
			}
		}
		return repositories{
			attendance: postgresql.NewAttendanceRepository(db),
			users:      postgresql.NewUserRepository(db),
			teams:      postgresql.NewTeamRepository(db),
			close:      func(context.Context) { db.Close() },
		}, nil
	}
}

func main() {
	migrate := flag.Bool("migrate", false, "apply SQL migrations before serving (postgres only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.Options{
		App:     cfg.App.Name,
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, *migrate)
	if err != nil {
		log.Error("Error connecting to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close(context.Background())

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.CookieName)

	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.users, repos.teams)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         log,
			AllowedOrigins: cfg.App.FrontendURLs,
		},
		JWTService,
		repos.users,
		attendanceHandler,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}
}
