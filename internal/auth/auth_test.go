package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:           "test-secret-key",
		TokenExpiration:     time.Hour * 24,
		FaceFreshnessWindow: time.Hour * 2,
	}
}

func newTestService(t *testing.T) *Service {
	return NewService(
		newTestConfig(),
		newTestLogger(t),
		newMockRepository(),
	)
}

func newTestServiceWithRepo(t *testing.T, repo Repository) *Service {
	return NewService(
		newTestConfig(),
		newTestLogger(t),
		repo,
	)
}

func newTestPolicy() *Policy {
	return NewPolicy(newTestConfig())
}

func newTestHandler(t *testing.T) (*Handler, Repository) {
	repo := newMockRepository()
	svc := newTestServiceWithRepo(t, repo)
	return NewHandler(svc, newTestPolicy(), newTestLogger(t)), repo
}
