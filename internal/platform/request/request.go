// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away common body decoding patterns and identity lookups, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
	"github.com/taibuivan/fitmate/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

The body is capped at [constants.MaxRequestBodyBytes]. Unknown fields and
trailing data after the first JSON value are rejected.

Parameters:
  - writer: http.ResponseWriter (needed by http.MaxBytesReader)
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	body := http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}

	// Exactly one JSON value per body.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
RequiredAccountID returns the id of the currently logged-in account.

Returns:
  - int64: Account ID
  - error: apperr.Unauthenticated if no session is attached
*/
func RequiredAccountID(request *http.Request) (int64, error) {
	accountID, ok := ctxutil.GetAccountID(request.Context())
	if !ok {
		return 0, apperr.Unauthenticated("Not authenticated")
	}
	return accountID, nil
}
