// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/fitmate/internal/platform/request"
	"github.com/taibuivan/fitmate/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the text-generation HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the endpoints on router.
//
// # Endpoints
//   - POST /chat    : Free-form question.
//   - POST /diet    : Diet-plan prompt.
//   - POST /workout : Weekly workout plan.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/chat", handler.chat)
	router.Post("/diet", handler.diet)
	router.Post("/workout", handler.workout)
}

// # Payloads

type chatRequest struct {
	Message string `json:"message"`
}

type dietRequest struct {
	Prompt string `json:"prompt"`
}

type workoutRequest struct {
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Goal   string `json:"goal"`
	Level  string `json:"level"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

// chat handles POST /chat.
func (handler *Handler) chat(writer http.ResponseWriter, request *http.Request) {
	var input chatRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply, err := handler.service.Chat(request.Context(), input.Message)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, replyResponse{Reply: reply})
}

// diet handles POST /diet.
func (handler *Handler) diet(writer http.ResponseWriter, request *http.Request) {
	var input dietRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply, err := handler.service.Diet(request.Context(), input.Prompt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, replyResponse{Reply: reply})
}

// workout handles POST /workout.
func (handler *Handler) workout(writer http.ResponseWriter, request *http.Request) {
	var input workoutRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply, err := handler.service.Workout(request.Context(), WorkoutInput{
		Gender: input.Gender,
		Age:    input.Age,
		Goal:   input.Goal,
		Level:  input.Level,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, replyResponse{Reply: reply})
}
