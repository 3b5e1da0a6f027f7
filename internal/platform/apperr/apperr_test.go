// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
)

/*
TestConstructors_StatusAndCode checks every constructor maps to its HTTP status.
*/
func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, apperr.CodeValidation},
		{"duplicate", apperr.DuplicateIdentity("dup"), http.StatusConflict, apperr.CodeDuplicateIdentity},
		{"unauthenticated", apperr.Unauthenticated("who"), http.StatusUnauthorized, apperr.CodeUnauthenticated},
		{"invalid_token", apperr.InvalidToken("bad token"), http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"not_found", apperr.NotFound("Account"), http.StatusNotFound, apperr.CodeNotFound},
		{"rate_limited", apperr.RateLimited(60), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, apperr.CodeInternal},
		{"upstream", apperr.UpstreamUnavailable("down", nil), http.StatusServiceUnavailable, apperr.CodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

/*
TestAppError_CauseChain verifies the cause stays reachable through wrapping.
*/
func TestAppError_CauseChain(t *testing.T) {
	sentinel := errors.New("unique violation")
	wrapped := fmt.Errorf("service: %w", apperr.DuplicateIdentity("taken").WithCause(sentinel))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeDuplicateIdentity))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "taken", ae.Error())
}

/*
TestInternal_HidesCause ensures the client message never contains the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	err := apperr.Internal(errors.New("SELECT * FROM accounts failed"))
	assert.NotContains(t, err.Error(), "SELECT")
	assert.Nil(t, apperr.As(errors.New("plain")))
}
