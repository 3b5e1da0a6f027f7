// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package database resolves DATABASE_URL into a driver kind and its DSNs.
//
// Two engines are supported: PostgreSQL (postgres://, postgresql://, pgx5://)
// and SQLite (sqlite://path, file:path or a bare filesystem path).
package database

import (
	"errors"
	"strings"
)

// Kind identifies the storage engine behind a DATABASE_URL.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

// ErrEmptyURL is returned when no database location is configured.
var ErrEmptyURL = errors.New("database: empty DATABASE_URL")

// sqlitePragmas are applied to every SQLite connection.
//
// busy_timeout lets concurrent writers queue on the file lock instead of
// failing with SQLITE_BUSY; the UNIQUE index still arbitrates duplicates.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"

// Location is a parsed DATABASE_URL.
type Location struct {
	Kind Kind
	// Raw is the URL as configured.
	Raw string
	// Path is the SQLite file path (empty for PostgreSQL).
	Path string
}

// Parse classifies rawURL.
func Parse(rawURL string) (Location, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Location{}, ErrEmptyURL
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"postgres://", "postgresql://", "pgx5://"} {
		if strings.HasPrefix(lower, prefix) {
			return Location{Kind: KindPostgres, Raw: trimmed}, nil
		}
	}

	path := trimmed
	for _, prefix := range []string{"sqlite://", "sqlite3://", "file:"} {
		if strings.HasPrefix(lower, prefix) {
			path = trimmed[len(prefix):]
			break
		}
	}
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return Location{}, ErrEmptyURL
	}

	return Location{Kind: KindSQLite, Raw: trimmed, Path: path}, nil
}

// DriverDSN returns the DSN handed to the Go SQL driver (pgxpool or modernc).
func (l Location) DriverDSN() string {
	if l.Kind == KindPostgres {
		return l.Raw
	}
	return "file:" + l.Path + "?" + sqlitePragmas
}

// MigrateURL returns the URL understood by golang-migrate's database drivers.
func (l Location) MigrateURL() string {
	if l.Kind == KindSQLite {
		return "sqlite://" + l.Path
	}

	const pgPrefix = "postgres://"
	const pgqlPrefix = "postgresql://"
	const pgx5Prefix = "pgx5://"

	dsn := l.Raw
	switch {
	case strings.HasPrefix(dsn, pgx5Prefix):
		return dsn
	case strings.HasPrefix(dsn, pgPrefix):
		return pgx5Prefix + dsn[len(pgPrefix):]
	case strings.HasPrefix(dsn, pgqlPrefix):
		return pgx5Prefix + dsn[len(pgqlPrefix):]
	}
	return dsn
}
