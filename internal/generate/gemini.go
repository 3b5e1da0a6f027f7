// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// # Gemini Client

// ErrEmptyReply is returned when the provider answers without any text.
var ErrEmptyReply = errors.New("generate: provider returned no text")

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGeminiTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for logs.
	maxErrorBody = 4096
)

// GeminiConfig configures the generateContent endpoint and HTTP behavior.
type GeminiConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiClient calls models/{model}:generateContent.
//
// It holds no per-call state and is safe for concurrent use.
type GeminiClient struct {
	cfg GeminiConfig
}

// NewGeminiClient builds a client, filling defaults for empty fields.
//
// Timeout bounds every call unless the supplied HTTPClient already has one.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiClient{cfg: cfg}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends prompt as a single user turn and returns the reply text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("generate: api key is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("generate: prompt is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	requestBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("generate: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("generate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key travels in a header so it never shows up in URLs or access logs.
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return "", fmt.Errorf("generate: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("generate: decode response: %w", err)
	}

	if payload.PromptFeedback != nil && payload.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: blocked (%s)", ErrEmptyReply, payload.PromptFeedback.BlockReason)
	}

	for _, candidate := range payload.Candidates {
		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
		if text := strings.TrimSpace(builder.String()); text != "" {
			return text, nil
		}
	}

	return "", ErrEmptyReply
}
