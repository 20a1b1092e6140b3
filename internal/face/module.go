package face

import (
	"github.com/pametni-paketnik/locker-api/internal/auth"
	"github.com/pametni-paketnik/locker-api/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewModule returns the face verification module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide recognition client
			fx.Annotate(
				func(config *config.AppConfig) RecognitionClient {
					return NewClient(&config.Face)
				},
			),
			// Provide service
			fx.Annotate(
				func(client RecognitionClient, users auth.Repository, log *zap.Logger) *Service {
					return NewService(client, users, log)
				},
			),
			// Provide handler
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
		),
	)
}
