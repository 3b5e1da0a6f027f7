// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It understands both supported drivers: pgx (PostgreSQL) and modernc (SQLite).
package dberr

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsNoRows reports whether err means the queried row does not exist.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err is a UNIQUE / PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	// 1. PostgreSQL SQLSTATE 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	// 2. SQLite extended result codes
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch code := sqliteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// Primary result code only; fall back to the message.
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}
