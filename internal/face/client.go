package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pametni-paketnik/locker-api/internal/config"
)

var (
	// ErrServiceUnavailable means the recognition service could not be
	// reached at all. Distinct from a reachable service that declines.
	ErrServiceUnavailable = errors.New("face recognition service unavailable")
	// ErrTimeout means the bounded call ran out of time. Retryable.
	ErrTimeout = errors.New("face recognition service timed out")
	// ErrRejected means the service responded but declined the request.
	ErrRejected = errors.New("face recognition request rejected")
)

// RecognitionClient talks to the external face-recognition service.
type RecognitionClient interface {
	Register(ctx context.Context, userID string, image Image) (*RegisterResult, error)
	Verify(ctx context.Context, userID string, image Image) (*VerifyResult, error)
	DeleteProfile(ctx context.Context, userID string) error
}

// Image is an uploaded face capture forwarded to the recognition service.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type RegisterResult struct {
	EmbeddingsCount int
}

type VerifyResult struct {
	Verified        bool
	SimilarityScore float64
	Threshold       float64
}

type httpClient struct {
	baseURL       string
	client        *http.Client
	deleteTimeout time.Duration
}

func NewClient(config *config.FaceConfig) RecognitionClient {
	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	deleteTimeout := config.DeleteTimeout
	if deleteTimeout <= 0 {
		deleteTimeout = 10 * time.Second
	}

	return &httpClient{
		baseURL:       config.BaseURL,
		client:        &http.Client{Timeout: requestTimeout},
		deleteTimeout: deleteTimeout,
	}
}

type registerResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	EmbeddingsCount int    `json:"embeddings_count"`
}

type verifyResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	Verified        bool    `json:"verified"`
	SimilarityScore float64 `json:"similarity_score"`
	Threshold       float64 `json:"threshold"`
}

func (c *httpClient) Register(ctx context.Context, userID string, image Image) (*RegisterResult, error) {
	body, err := c.postImage(ctx, "/register", userID, image)
	if err != nil {
		return nil, err
	}

	var resp registerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding register response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}

	return &RegisterResult{EmbeddingsCount: resp.EmbeddingsCount}, nil
}

func (c *httpClient) Verify(ctx context.Context, userID string, image Image) (*VerifyResult, error) {
	body, err := c.postImage(ctx, "/verify", userID, image)
	if err != nil {
		return nil, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}

	return &VerifyResult{
		Verified:        resp.Verified,
		SimilarityScore: resp.SimilarityScore,
		Threshold:       resp.Threshold,
	}, nil
}

func (c *httpClient) DeleteProfile(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.deleteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/user/"+userID, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return ErrServiceUnavailable
	}
	return nil
}

// postImage sends a multipart form with the user id and image, returning
// the raw response body. 2xx and 4xx bodies are both returned, since a
// declined verification is a valid outcome carried in the body; 5xx maps
// to ErrServiceUnavailable.
func (c *httpClient) postImage(ctx context.Context, path, userID string, image Image) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("user_id", userID); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("image", image.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, ErrServiceUnavailable
	}

	return io.ReadAll(resp.Body)
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrServiceUnavailable
}
