package auth

import (
	"time"

	"github.com/pametni-paketnik/locker-api/internal/config"
)

// ClientType identifies which kind of client is attempting a login,
// declared via the X-Client-Type header. Anything other than the mobile
// app (including a missing header) is treated as a web client.
type ClientType string

const (
	ClientApp ClientType = "app"
	ClientWeb ClientType = "web"

	// ClientTypeHeader carries the client's self-declared type.
	ClientTypeHeader = "X-Client-Type"
)

func ClientTypeFromHeader(value string) ClientType {
	if value == string(ClientApp) {
		return ClientApp
	}
	return ClientWeb
}

// DefaultFaceFreshnessWindow bounds how old the last successful face
// verification may be before a web login is blocked into re-verification.
const DefaultFaceFreshnessWindow = 2 * time.Hour

type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionFaceRegistrationRequired
	DecisionFaceReverificationRequired
)

type Decision struct {
	Kind    DecisionKind
	Message string
}

// Policy decides whether a credential-checked login may proceed or must
// first complete a face registration / re-verification step.
type Policy struct {
	freshnessWindow time.Duration
}

func NewPolicy(config *config.AuthConfig) *Policy {
	window := config.FaceFreshnessWindow
	if window <= 0 {
		window = DefaultFaceFreshnessWindow
	}
	return &Policy{freshnessWindow: window}
}

func (p *Policy) FreshnessWindow() time.Duration {
	return p.freshnessWindow
}

// Evaluate runs the step-up checks for a user whose identity and password
// have already been verified. The mobile app enforces face onboarding
// itself after login, so the face gates apply to web clients only.
func (p *Policy) Evaluate(user *User, client ClientType, now time.Time) Decision {
	if client == ClientApp {
		return Decision{Kind: DecisionAllow}
	}

	if !user.FaceRegistered {
		return Decision{
			Kind:    DecisionFaceRegistrationRequired,
			Message: "Face registration is required before logging in. Please register your face using the mobile app.",
		}
	}

	if !p.isFresh(user.LastFaceVerification, now) {
		return Decision{
			Kind:    DecisionFaceReverificationRequired,
			Message: "Face re-verification is required. Please verify your face using the mobile app.",
		}
	}

	return Decision{Kind: DecisionAllow}
}

// isFresh reports whether the last verification is strictly inside the
// freshness window. A verification exactly at the boundary counts as stale.
func (p *Policy) isFresh(lastVerification *time.Time, now time.Time) bool {
	if lastVerification == nil {
		return false
	}
	return now.Sub(*lastVerification) < p.freshnessWindow
}
