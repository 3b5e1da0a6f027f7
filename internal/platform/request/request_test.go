// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/fitmate/internal/platform/request"
	"github.com/taibuivan/fitmate/internal/platform/sec"
	"github.com/taibuivan/fitmate/internal/platform/validate"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decode(body string) (loginBody, error) {
	var target loginBody
	request := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	err := requestutil.DecodeJSON(httptest.NewRecorder(), request, &target)
	return target, err
}

/*
TestDecodeJSON covers the accepted shape and every rejected one.
*/
func TestDecodeJSON(t *testing.T) {
	got, err := decode(`{"email":"a@x.io","password":"secret123"}`)
	require.NoError(t, err)
	assert.Equal(t, loginBody{Email: "a@x.io", Password: "secret123"}, got)

	// Trailing whitespace is not a second value.
	_, err = decode("{\"email\":\"a@x.io\"}\n")
	assert.NoError(t, err)

	rejected := map[string]string{
		"malformed":     `{"email":`,
		"unknown_field": `{"email":"a@x.io","role":"admin"}`,
		"trailing_data": `{"email":"a@x.io"}{"email":"b@x.io"}`,
		"trailing_junk": `{"email":"a@x.io"} junk`,
		"empty":         ``,
	}
	for name, body := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := decode(body)
			assert.ErrorIs(t, err, validate.ErrInvalidJSON)
		})
	}
}

/*
TestRequiredAccountID reads the session attached by the auth middleware.
*/
func TestRequiredAccountID(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	_, err := requestutil.RequiredAccountID(request)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthenticated, apperr.As(err).Code)

	claims := &sec.AuthClaims{AccountID: 42}
	request = request.WithContext(ctxutil.WithAuthUser(context.Background(), claims))
	accountID, err := requestutil.RequiredAccountID(request)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
}
