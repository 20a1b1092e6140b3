package face

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pametni-paketnik/locker-api/internal/auth"
)

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "capture.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("not-really-a-jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func withClaims(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), auth.ClaimsContextKey, &auth.Claims{
		UserID:   userID,
		Username: "testuser",
	}))
}

func TestHandler_Register(t *testing.T) {
	users := newFakeUsers()
	user := users.addUser(&auth.User{Username: "testuser"})

	client := &fakeRecognition{registerResult: &RegisterResult{EmbeddingsCount: 5}}
	h := NewHandler(NewService(client, users, newTestLogger(t)), newTestLogger(t))

	body, contentType := multipartBody(t, nil, true)
	req := withClaims(httptest.NewRequest(http.MethodPost, "/face/register", body), user.ID)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success         bool `json:"success"`
		EmbeddingsCount int  `json:"embeddings_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 5, resp.EmbeddingsCount)
}

func TestHandler_Register_NoImage(t *testing.T) {
	users := newFakeUsers()
	user := users.addUser(&auth.User{Username: "testuser"})

	h := NewHandler(NewService(&fakeRecognition{}, users, newTestLogger(t)), newTestLogger(t))

	body, contentType := multipartBody(t, nil, false)
	req := withClaims(httptest.NewRequest(http.MethodPost, "/face/register", body), user.ID)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Register_ServiceUnavailable(t *testing.T) {
	users := newFakeUsers()
	user := users.addUser(&auth.User{Username: "testuser"})

	client := &fakeRecognition{err: ErrServiceUnavailable}
	h := NewHandler(NewService(client, users, newTestLogger(t)), newTestLogger(t))

	body, contentType := multipartBody(t, nil, true)
	req := withClaims(httptest.NewRequest(http.MethodPost, "/face/register", body), user.ID)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Verify(t *testing.T) {
	users := newFakeUsers()
	user := users.addUser(&auth.User{Username: "testuser", FaceRegistered: true})

	tests := []struct {
		name     string
		verified bool
		score    float64
		wantCode int
	}{
		{name: "matching face", verified: true, score: 0.91, wantCode: http.StatusOK},
		{name: "non-matching face", verified: false, score: 0.42, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeRecognition{verifyResult: &VerifyResult{
				Verified:        tt.verified,
				SimilarityScore: tt.score,
				Threshold:       0.7,
			}}
			h := NewHandler(NewService(client, users, newTestLogger(t)), newTestLogger(t))

			body, contentType := multipartBody(t, map[string]string{"user_id": user.ID}, true)
			req := httptest.NewRequest(http.MethodPost, "/face/verify", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			h.Verify(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)

			var resp VerifyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.verified, resp.Verified)
			// The score is reported even for a failed match
			assert.InDelta(t, tt.score, resp.SimilarityScore, 1e-9)
		})
	}
}

func TestHandler_Verify_Validation(t *testing.T) {
	users := newFakeUsers()
	registered := users.addUser(&auth.User{Username: "registered"})

	h := NewHandler(NewService(&fakeRecognition{}, users, newTestLogger(t)), newTestLogger(t))

	tests := []struct {
		name      string
		userID    string
		withImage bool
		wantCode  int
	}{
		{name: "missing user_id", userID: "", withImage: true, wantCode: http.StatusBadRequest},
		{name: "unknown user", userID: "no-such-user", withImage: true, wantCode: http.StatusNotFound},
		{name: "face not registered", userID: registered.ID, withImage: true, wantCode: http.StatusBadRequest},
		{name: "missing image", userID: registered.ID, withImage: false, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{}
			if tt.userID != "" {
				fields["user_id"] = tt.userID
			}

			body, contentType := multipartBody(t, fields, tt.withImage)
			req := httptest.NewRequest(http.MethodPost, "/face/verify", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			h.Verify(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_StatusAndDelete(t *testing.T) {
	users := newFakeUsers()
	user := users.addUser(&auth.User{Username: "testuser", FaceRegistered: true})

	client := &fakeRecognition{}
	h := NewHandler(NewService(client, users, newTestLogger(t)), newTestLogger(t))

	req := withClaims(httptest.NewRequest(http.MethodGet, "/face/status", nil), user.ID)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Success        bool `json:"success"`
		FaceRegistered bool `json:"faceRegistered"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.FaceRegistered)

	req = withClaims(httptest.NewRequest(http.MethodDelete, "/face/delete", nil), user.ID)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := users.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.FaceRegistered)
}
