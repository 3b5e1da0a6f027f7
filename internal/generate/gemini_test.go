// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewGeminiClientDefaults(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{APIKey: "k"})

	assert.Equal(t, defaultGeminiBaseURL, client.cfg.BaseURL)
	assert.Equal(t, defaultGeminiModel, client.cfg.Model)
	assert.Equal(t, defaultGeminiTimeout, client.cfg.Timeout)
	require.NotNil(t, client.cfg.HTTPClient)
	assert.Equal(t, defaultGeminiTimeout, client.cfg.HTTPClient.Timeout)
}

func TestGeminiClient_Generate(t *testing.T) {
	var captured *http.Request
	var body geminiRequest

	client := NewGeminiClient(GeminiConfig{
		BaseURL: "https://provider.example.com/v1beta/",
		APIKey:  "key-1",
		Model:   "gemini-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			return response(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Drink "},{"text":"water."}]}}]}`), nil
		})},
	})

	reply, err := client.Generate(context.Background(), "hydration tips")
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", reply)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "https://provider.example.com/v1beta/models/gemini-test:generateContent", captured.URL.String())
	assert.Equal(t, "key-1", captured.Header.Get("x-goog-api-key"))
	assert.NotContains(t, captured.URL.RawQuery, "key-1")
	require.Len(t, body.Contents, 1)
	assert.Equal(t, "hydration tips", body.Contents[0].Parts[0].Text)
}

func TestGeminiClient_Failures(t *testing.T) {
	tests := []struct {
		name      string
		transport roundTripFunc
		isEmpty   bool
	}{
		{
			name: "transport_error",
			transport: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			name: "non_2xx",
			transport: func(*http.Request) (*http.Response, error) {
				return response(http.StatusTooManyRequests, `{"error":{"message":"quota"}}`), nil
			},
		},
		{
			name: "malformed_json",
			transport: func(*http.Request) (*http.Response, error) {
				return response(http.StatusOK, `{"candidates":`), nil
			},
		},
		{
			name: "no_candidates",
			transport: func(*http.Request) (*http.Response, error) {
				return response(http.StatusOK, `{"candidates":[]}`), nil
			},
			isEmpty: true,
		},
		{
			name: "blocked_prompt",
			transport: func(*http.Request) (*http.Response, error) {
				return response(http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`), nil
			},
			isEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewGeminiClient(GeminiConfig{APIKey: "k", HTTPClient: &http.Client{Transport: tt.transport}})
			_, err := client.Generate(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.isEmpty, errors.Is(err, ErrEmptyReply))
		})
	}
}

func TestGeminiClient_Timeout(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{
		APIKey:  "k",
		Timeout: 20 * time.Millisecond,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})},
	})

	_, err := client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGeminiClient_ValidationSkipsNetwork(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			t.Fatalf("round trip should not execute: %v", req.URL)
			return nil, nil
		})},
	})

	_, err := client.Generate(context.Background(), "hello")
	assert.Error(t, err)

	client.cfg.APIKey = "k"
	_, err = client.Generate(context.Background(), "   ")
	assert.Error(t, err)
}
