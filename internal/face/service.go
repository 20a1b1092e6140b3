package face

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pametni-paketnik/locker-api/internal/auth"
)

// ErrNotRegistered means verification was attempted for a user who has
// no registered face profile.
var ErrNotRegistered = errors.New("face not registered")

// Service brokers face registration and verification against the external
// recognition service and keeps the user's face state in sync with the
// outcome. A failed match is a valid result, not an error, and leaves the
// verification timestamp untouched.
type Service struct {
	client RecognitionClient
	users  auth.Repository
	log    *zap.Logger
}

func NewService(client RecognitionClient, users auth.Repository, log *zap.Logger) *Service {
	return &Service{
		client: client,
		users:  users,
		log:    log,
	}
}

func (s *Service) Register(ctx context.Context, userID string, image Image) (*RegisterResult, error) {
	result, err := s.client.Register(ctx, userID, image)
	if err != nil {
		return nil, err
	}

	registered := true
	now := time.Now()
	if err := s.users.UpdateFaceState(userID, auth.FaceStateUpdate{
		FaceRegistered:   &registered,
		FaceRegisteredAt: &now,
	}); err != nil {
		return nil, err
	}

	s.log.Info("face registered",
		zap.String("user_id", userID),
		zap.Int("embeddings_count", result.EmbeddingsCount))

	return result, nil
}

func (s *Service) Verify(ctx context.Context, userID string, image Image) (*VerifyResult, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.FaceRegistered {
		return nil, ErrNotRegistered
	}

	result, err := s.client.Verify(ctx, userID, image)
	if err != nil {
		return nil, err
	}

	if result.Verified {
		now := time.Now()
		if err := s.users.UpdateFaceState(userID, auth.FaceStateUpdate{
			LastFaceVerification: &now,
		}); err != nil {
			return nil, err
		}

		s.log.Info("face verification successful",
			zap.String("user_id", userID),
			zap.Float64("similarity_score", result.SimilarityScore))
	} else {
		s.log.Info("face verification failed",
			zap.String("user_id", userID),
			zap.Float64("similarity_score", result.SimilarityScore))
	}

	return result, nil
}

type Status struct {
	FaceRegistered       bool       `json:"faceRegistered"`
	FaceRegisteredAt     *time.Time `json:"faceRegisteredAt"`
	LastFaceVerification *time.Time `json:"lastFaceVerification"`
}

func (s *Service) Status(userID string) (*Status, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	return &Status{
		FaceRegistered:       user.FaceRegistered,
		FaceRegisteredAt:     user.FaceRegisteredAt,
		LastFaceVerification: user.LastFaceVerification,
	}, nil
}

// Delete removes the user's face profile. The remote delete is best
// effort; local state is cleared regardless so the user can re-register.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.client.DeleteProfile(ctx, userID); err != nil {
		s.log.Warn("could not delete remote face profile",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return s.users.UpdateFaceState(userID, auth.FaceStateUpdate{Clear: true})
}
