// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/fitmate/internal/platform/dberr"
)

/*
TestIsUniqueViolation_Postgres recognises SQLSTATE 23505 through wrapping.
*/
func TestIsUniqueViolation_Postgres(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	notNull := &pgconn.PgError{Code: pgerrcode.NotNullViolation}

	assert.True(t, dberr.IsUniqueViolation(unique))
	assert.False(t, dberr.IsUniqueViolation(notNull))
	assert.False(t, dberr.IsUniqueViolation(errors.New("plain")))
	assert.False(t, dberr.IsUniqueViolation(nil))
}

/*
TestIsNoRows covers both driver sentinels.
*/
func TestIsNoRows(t *testing.T) {
	assert.True(t, dberr.IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.True(t, dberr.IsNoRows(sql.ErrNoRows))
	assert.False(t, dberr.IsNoRows(errors.New("timeout")))
}
