// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package generate proxies chat, diet and workout requests to a hosted
text-generation model.

The provider is opaque: each request becomes one prompt and the reply text
is returned verbatim. Provider failures surface as UPSTREAM_UNAVAILABLE and
are never retried.
*/
package generate

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/validate"
)

// # Contracts

// Generator turns a prompt into reply text. [*GeminiClient] satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// # Field Identifiers & Limits

const (
	FieldMessage = "message"
	FieldPrompt  = "prompt"
	FieldGender  = "gender"
	FieldAge     = "age"
	FieldGoal    = "goal"
	FieldLevel   = "level"

	MaxMessageLength   = 1000
	MaxPromptLength    = 4000
	MaxAttributeLength = 50
	MinAge             = 1
	MaxAge             = 120
)

// workoutTemplate is filled with level, gender, age and goal.
const workoutTemplate = "Act as a professional fitness trainer. Create a detailed weekly workout plan in Markdown format for a %s level person. " +
	"The person's gender is %s, age is %d, and their primary goal is %s. " +
	"The plan should be structured with headings for each day (e.g., Day 1, Day 2), bold text for exercise names, " +
	"and include details on sets, reps, and a brief description. Do not include a meal plan."

// # Service Layer

// Service validates requests and forwards them to the [Generator].
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService constructs a new [Service].
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{generator: generator, logger: logger}
}

/*
Chat answers a free-form message.

The message is trimmed, must be 1..1000 characters, and is HTML-escaped
before it reaches the model.
*/
func (service *Service) Chat(context context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)

	validator := &validate.Validator{}
	validator.
		Required(FieldMessage, message).
		MaxLen(FieldMessage, message, MaxMessageLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	return service.generate(context, "chat", html.EscapeString(message), "Failed to get response from AI")
}

// Diet answers a diet-plan prompt written by the client.
func (service *Service) Diet(context context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)

	validator := &validate.Validator{}
	validator.
		Required(FieldPrompt, prompt).
		MaxLen(FieldPrompt, prompt, MaxPromptLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	return service.generate(context, "diet", prompt, "Failed to generate diet plan")
}

// WorkoutInput describes the person a workout plan is written for.
type WorkoutInput struct {
	Gender string
	Age    int
	Goal   string
	Level  string
}

// WorkoutPrompt renders the trainer prompt for input.
func WorkoutPrompt(input WorkoutInput) string {
	return fmt.Sprintf(workoutTemplate, input.Level, input.Gender, input.Age, input.Goal)
}

// Workout builds a weekly workout plan from the person's attributes.
func (service *Service) Workout(context context.Context, input WorkoutInput) (string, error) {
	input.Gender = strings.TrimSpace(input.Gender)
	input.Goal = strings.TrimSpace(input.Goal)
	input.Level = strings.TrimSpace(input.Level)

	validator := &validate.Validator{}
	validator.
		Required(FieldGender, input.Gender).
		MaxLen(FieldGender, input.Gender, MaxAttributeLength).
		Range(FieldAge, input.Age, MinAge, MaxAge).
		Required(FieldGoal, input.Goal).
		MaxLen(FieldGoal, input.Goal, MaxAttributeLength).
		Required(FieldLevel, input.Level).
		MaxLen(FieldLevel, input.Level, MaxAttributeLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	return service.generate(context, "workout", WorkoutPrompt(input), "Failed to generate workout plan")
}

// generate calls the provider once and maps failures to UPSTREAM_UNAVAILABLE.
func (service *Service) generate(context context.Context, kind, prompt, failureMessage string) (string, error) {
	startTime := time.Now()

	reply, err := service.generator.Generate(context, prompt)
	if err != nil {
		service.logger.WarnContext(context, "generation_failed",
			slog.String("kind", kind),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
			slog.Any("error", err),
		)
		return "", apperr.UpstreamUnavailable(failureMessage, err)
	}

	service.logger.InfoContext(context, "generation_completed",
		slog.String("kind", kind),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return reply, nil
}
