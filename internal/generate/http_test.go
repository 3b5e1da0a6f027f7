// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/fitmate/internal/generate"
	"github.com/taibuivan/fitmate/internal/platform/apperr"
)

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newHandler(generator generate.Generator) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	generate.NewHandler(generate.NewService(generator, logger)).Register(router)
	return router
}

func TestChat(t *testing.T) {
	generator := &fakeGenerator{reply: "Stay consistent."}

	apitest.New().
		Handler(newHandler(generator)).
		Post("/chat").
		JSON(`{"message":"  <b>how</b> do I start?  "}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.reply`, "Stay consistent.")).
		End()

	assert.Equal(t, []string{"&lt;b&gt;how&lt;/b&gt; do I start?"}, generator.prompts)
}

func TestChat_MessageLength(t *testing.T) {
	generator := &fakeGenerator{reply: "ok"}
	handler := newHandler(generator)

	for _, message := range []string{"   ", strings.Repeat("a", generate.MaxMessageLength+1)} {
		apitest.New().
			Handler(handler).
			Post("/chat").
			JSON(map[string]string{"message": message}).
			Expect(t).
			Status(http.StatusBadRequest).
			Assert(jsonpath.Equal(`$.details[0].field`, generate.FieldMessage)).
			End()
	}

	assert.Empty(t, generator.prompts)
}

func TestDiet(t *testing.T) {
	generator := &fakeGenerator{reply: "Eat greens."}

	apitest.New().
		Handler(newHandler(generator)).
		Post("/diet").
		JSON(`{"prompt":"vegetarian plan"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.reply`, "Eat greens.")).
		End()
}

func TestWorkout_FillsTemplate(t *testing.T) {
	generator := &fakeGenerator{reply: "Day 1"}

	apitest.New().
		Handler(newHandler(generator)).
		Post("/workout").
		JSON(`{"gender":"female","age":29,"goal":"strength","level":"beginner"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	if assert.Len(t, generator.prompts, 1) {
		prompt := generator.prompts[0]
		assert.Contains(t, prompt, "for a beginner level person")
		assert.Contains(t, prompt, "gender is female, age is 29")
		assert.Contains(t, prompt, "primary goal is strength")
	}
}

func TestWorkout_Validation(t *testing.T) {
	apitest.New().
		Handler(newHandler(&fakeGenerator{})).
		Post("/workout").
		JSON(`{"gender":"","age":0,"goal":"","level":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Len(`$.details`, 4)).
		End()
}

func TestUpstreamFailure(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("quota exceeded")}

	apitest.New().
		Handler(newHandler(generator)).
		Post("/chat").
		JSON(`{"message":"hi"}`).
		Expect(t).
		Status(http.StatusServiceUnavailable).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeUpstreamUnavailable)).
		Assert(jsonpath.Equal(`$.error`, "Failed to get response from AI")).
		End()
}
