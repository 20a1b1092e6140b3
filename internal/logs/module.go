package logs

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewModule returns the access-log module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			fx.Annotate(
				func(repo Repository, log *zap.Logger) *Handler {
					return NewHandler(repo, log)
				},
			),
		),
	)
}
