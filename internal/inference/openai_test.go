package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Generate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "text_completion",
			"model": "gpt-3.5-turbo-instruct",
			"choices": [{"text": " Your VPN request is on its way.", "index": 0, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	client := NewOpenAI("sk-test", server.URL+"/v1", "gpt-3.5-turbo-instruct", testParams, server.Client())
	text, err := client.Generate(context.Background(), "User: vpn\nAI IAM Assistant:")
	require.NoError(t, err)

	assert.Equal(t, " Your VPN request is on its way.", text)
	assert.Equal(t, "gpt-3.5-turbo-instruct", body["model"])
	assert.Equal(t, "User: vpn\nAI IAM Assistant:", body["prompt"])
	assert.EqualValues(t, 150, body["max_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-6)
	assert.InDelta(t, 0.9, body["top_p"], 1e-6)
	assert.InDelta(t, 0.1, body["frequency_penalty"], 1e-6)
}

func TestOpenAI_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAI("sk-test", server.URL+"/v1", "gpt-3.5-turbo-instruct", testParams, server.Client()).
		Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestOpenAI_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAI("sk-wrong", server.URL+"/v1", "gpt-3.5-turbo-instruct", testParams, server.Client()).
		Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestFrequencyPenalty(t *testing.T) {
	assert.InDelta(t, 0.1, frequencyPenalty(1.1), 1e-9)
	assert.Equal(t, 0.0, frequencyPenalty(0))
	assert.Equal(t, 2.0, frequencyPenalty(5))
	assert.Equal(t, -2.0, frequencyPenalty(-3))
}
