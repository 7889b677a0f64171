package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iam-assistant-backend/internal/config"
)

var testParams = Params{
	MaxNewTokens:      150,
	Temperature:       0.7,
	DoSample:          true,
	TopP:              0.9,
	RepetitionPenalty: 1.1,
}

func TestHuggingFace_Generate_Success(t *testing.T) {
	var got generationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"generated_text":"User: hi\nAI IAM Assistant: Hello there, how can I help?"},{"generated_text":"second"}]`))
	}))
	defer server.Close()

	client := NewHuggingFace(server.URL, testParams, server.Client())
	text, err := client.Generate(context.Background(), "User: hi\nAI IAM Assistant:")
	require.NoError(t, err)

	assert.Equal(t, "User: hi\nAI IAM Assistant: Hello there, how can I help?", text)
	assert.Equal(t, "User: hi\nAI IAM Assistant:", got.Inputs)
	assert.Equal(t, generationParameters{
		MaxNewTokens:      150,
		Temperature:       0.7,
		DoSample:          true,
		TopP:              0.9,
		RepetitionPenalty: 1.1,
	}, got.Parameters)
}

func TestHuggingFace_Generate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "service unavailable",
			status: http.StatusServiceUnavailable,
			body:   `{"error":"Model is currently loading"}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusServiceUnavailable, se.Code)
				assert.Contains(t, se.Body, "currently loading")
			},
		},
		{
			name:   "object instead of candidates",
			status: http.StatusOK,
			body:   `{"error":"rate limited"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedResponse)
			},
		},
		{
			name:   "empty candidate list",
			status: http.StatusOK,
			body:   `[]`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedResponse)
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>gateway</html>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedResponse)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHuggingFace(server.URL, testParams, server.Client()).Generate(context.Background(), "prompt")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHuggingFace_Generate_MissingTextIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"score":0.1}]`))
	}))
	defer server.Close()

	text, err := NewHuggingFace(server.URL, testParams, server.Client()).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestHuggingFace_Generate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHuggingFace(server.URL, testParams, server.Client()).Generate(ctx, "prompt")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_AttachesTokenFromFile(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"generated_text":"ok"}]`))
	}))
	defer server.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"access_token":"hf_from_file"}`), 0o600))

	gen, err := New(config.Config{
		Provider:           config.ProviderHuggingFace,
		InferenceURL:       server.URL,
		InferenceTokenFile: tokenFile,
		InferenceTimeout:   time.Second,
	})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Bearer hf_from_file", auth)
}

func TestNew_AnonymousWithoutToken(t *testing.T) {
	auth := "unset"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"generated_text":"ok"}]`))
	}))
	defer server.Close()

	gen, err := New(config.Config{
		Provider:         config.ProviderHuggingFace,
		InferenceURL:     server.URL,
		InferenceTimeout: time.Second,
	})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
