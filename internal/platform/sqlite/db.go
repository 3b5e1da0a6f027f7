// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded SQLite database used when DATABASE_URL
// does not point at PostgreSQL.
//
// # Architecture
//
// This package is part of the Infrastructure layer and mirrors the postgres
// package: Open validates connectivity up front and Ping backs /ready.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// modernc registers the cgo-free "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/taibuivan/fitmate/internal/platform/database"
)

const (
	// maxOpenConns bounds concurrent connections to the single database file.
	maxOpenConns = 8
	// maxIdleConns keeps a warm connection for request bursts.
	maxIdleConns = 2
	// connMaxIdleTime recycles idle connections.
	connMaxIdleTime = 5 * time.Minute
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

// Open creates the database handle for location and validates it.
func Open(ctx context.Context, location database.Location, logger *slog.Logger) (*sql.DB, error) {
	if location.Kind != database.KindSQLite {
		return nil, fmt.Errorf("sqlite: unsupported location kind %q", location.Kind)
	}

	db, err := sql.Open("sqlite", location.DriverDSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", location.Path, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite_database_opened",
		slog.String("path", location.Path),
		slog.Int("max_open_conns", maxOpenConns),
	)

	return db, nil
}

// Ping verifies that the database file is reachable.
func Ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	return nil
}
