// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/fitmate/internal/platform/middleware"
	requestutil "github.com/taibuivan/fitmate/internal/platform/request"
	"github.com/taibuivan/fitmate/internal/platform/respond"
	"github.com/taibuivan/fitmate/internal/users/account"
)

// # Definitions & Constructors

// Handler implements the session HTTP endpoints.
type Handler struct {
	authService   *Service
	verifier      middleware.TokenVerifier
	secureCookies bool
}

// NewHandler constructs a new [Handler].
//
// secureCookies marks the session cookie Secure; enable it in production.
func NewHandler(service *Service, verifier middleware.TokenVerifier, secureCookies bool) *Handler {
	return &Handler{authService: service, verifier: verifier, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with the session routes.
//
// # Endpoints
//   - POST /signup : Creates a new account.
//   - POST /login  : Verifies credentials and sets the session cookie.
//   - GET  /me     : Returns the account behind the session cookie.
//   - POST /logout : Clears the session cookie.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(handler.verifier))
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Response Payloads

type messageResponse struct {
	Message   string `json:"message"`
	AccountID int64  `json:"id,omitempty"`
}

type meResponse struct {
	User *account.Account `json:"user"`
}

/*
Signup handles the creation of a new account.

POST /api/signup

Request:
  - Body: signupRequest (Name, Email, Password)

Response:
  - 201: messageResponse with the new account ID
  - 400: VALIDATION_ERROR listing every violated field
  - 409: DUPLICATE_IDENTITY when the email is taken
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	accountID, err := handler.authService.Signup(request.Context(), account.CreateInput{
		DisplayName: input.Name,
		Email:       input.Email,
		Password:    input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, messageResponse{Message: "User created", AccountID: accountID})
}

/*
Login authenticates an account and establishes a session.

POST /api/login

Response:
  - 200: messageResponse with the account ID, plus the session cookie
  - 400: VALIDATION_ERROR
  - 401: UNAUTHORIZED "Invalid credentials"
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, sessionCookie(session.Token, session.ExpiresAt, handler.secureCookies))

	respond.OK(writer, messageResponse{Message: "Logged in", AccountID: session.AccountID})
}

/*
Me returns the account behind the session cookie.

GET /api/me

Response:
  - 200: meResponse
  - 401: UNAUTHENTICATED or INVALID_TOKEN
  - 404: NOT_FOUND when the account no longer exists
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.authService.Me(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, meResponse{User: found})
}

/*
Logout clears the session cookie.

POST /api/logout

Response:
  - 200: messageResponse
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	http.SetCookie(writer, clearedSessionCookie(handler.secureCookies))
	respond.OK(writer, messageResponse{Message: "Logged out"})
}
