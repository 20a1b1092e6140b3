package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/auth"
	"github.com/pametni-paketnik/locker-api/internal/box"
	"github.com/pametni-paketnik/locker-api/internal/database"
	"github.com/pametni-paketnik/locker-api/internal/face"
	"github.com/pametni-paketnik/locker-api/internal/logs"
	"github.com/pametni-paketnik/locker-api/internal/migration"
	"github.com/pametni-paketnik/locker-api/internal/server"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Persistence
		database.Module(),
		migration.Module(),

		// Feature modules
		auth.NewModule(),
		face.NewModule(),
		box.NewModule(),
		logs.NewModule(),

		// Server
		fx.Provide(server.NewServer),

		// Start the server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			srv.Stop()
			return nil
		},
	})
}
