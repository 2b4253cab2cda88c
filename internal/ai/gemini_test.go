package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-api/internal/config"
)

func TestGenerate(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k123", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Try the "},{"text":"red sneakers. "}]}}]}`)
	}))
	defer srv.Close()

	client := NewGeminiClient(config.AIConfig{GeminiAPIKey: "k123", GeminiModel: "gemini-test", GeminiBaseURL: srv.URL})
	reply, err := client.Generate(context.Background(), "be helpful", []Turn{
		{Role: "user", Text: "hi"},
		{Role: "assistant", Text: "hello!"},
		{Role: "user", Text: "   "},
	}, "what should I buy?")
	require.NoError(t, err)
	assert.Equal(t, "Try the red sneakers.", reply)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be helpful", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "what should I buy?", got.Contents[2].Parts[0].Text)
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	client := NewGeminiClient(config.AIConfig{GeminiAPIKey: "bad", GeminiModel: "m", GeminiBaseURL: srv.URL})
	_, err := client.Generate(context.Background(), "", nil, "hi")
	assert.ErrorContains(t, err, "API key not valid")
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	client := NewGeminiClient(config.AIConfig{GeminiAPIKey: "k", GeminiModel: "m", GeminiBaseURL: srv.URL})
	_, err := client.Generate(context.Background(), "", nil, "hi")
	assert.ErrorIs(t, err, ErrEmptyReply)
}
