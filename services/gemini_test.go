package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamlist/config"
)

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var body geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "plan a trip", body.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient("secret", "gemini-1.5-flash", srv.URL+"/", srv.Client())
	text, err := c.Generate(context.Background(), "plan a trip")

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
}

func TestGeminiClient_Errors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, 500, nil},
		{"rate limited", http.StatusTooManyRequests, `quota`, 429, nil},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, 200, ErrEmptyGeneration},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, 200, ErrEmptyGeneration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewGeminiClient("k", "m", srv.URL, srv.Client()).Generate(context.Background(), "p")

			var uerr *UpstreamError
			require.True(t, errors.As(err, &uerr), "got %v", err)
			assert.Equal(t, "gemini", uerr.Provider)
			assert.Equal(t, tc.wantStatus, uerr.Status)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestGeminiClient_NoKey(t *testing.T) {
	_, err := NewGeminiClient("", "m", "http://127.0.0.1:0", nil).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestGeminiClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := NewGeminiClient("k", "m", srv.URL, client).Generate(context.Background(), "p")

	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Zero(t, uerr.Status)
}

func TestNewGenerator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Nil(t, NewGenerator(config.AIConfig{Provider: config.ProviderGemini}, logger))

	gen := NewGenerator(config.AIConfig{Provider: config.ProviderGemini, GeminiKey: "k", GeminiModel: "m", Timeout: time.Second}, logger)
	require.NotNil(t, gen)
	assert.Equal(t, "gemini", gen.Name())

	gen = NewGenerator(config.AIConfig{Provider: config.ProviderHuggingFace, HuggingFaceKey: "k", HFModel: "m", Timeout: time.Second}, logger)
	require.NotNil(t, gen)
	assert.Equal(t, "huggingface", gen.Name())
}
