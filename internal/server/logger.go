package server

import (
	"go.uber.org/zap"
)

// NewLogger builds a zap logger appropriate for the given environment.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case EnvProduction:
		return zap.NewProduction()
	case EnvTesting:
		return zap.NewNop(), nil
	default:
		return zap.NewDevelopment()
	}
}
