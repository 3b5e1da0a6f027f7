// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taibuivan/fitmate/internal/platform/database/schema"
	"github.com/taibuivan/fitmate/internal/platform/dberr"
)

// # SQLite Repository

// SQLiteRepository implements [Repository] on database/sql with the modernc driver.
//
// created_at is stored as Unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an opened, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create implements [Repository].
func (repository *SQLiteRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES (?, ?, ?, ?)
		RETURNING %s`,
		schema.Account.Table,
		schema.Account.DisplayName, schema.Account.Email, schema.Account.PasswordHash, schema.Account.CreatedAt,
		schema.Account.ID,
	)

	err := repository.db.QueryRowContext(context, query,
		account.DisplayName, account.Email, account.PasswordHash, account.CreatedAt.UnixMilli(),
	).Scan(&account.ID)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		return fmt.Errorf("account_sqlite_create_failed: %w", err)
	}

	return nil
}

// FindByEmail implements [Repository].
func (repository *SQLiteRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.Email,
	)
	return repository.findOne(context, query, email)
}

// FindByID implements [Repository].
func (repository *SQLiteRepository) FindByID(context context.Context, id int64) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.ID,
	)
	return repository.findOne(context, query, id)
}

// ListRecent implements [Repository].
func (repository *SQLiteRepository) ListRecent(context context.Context, limit int) ([]*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT ?`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.ID,
	)

	rows, err := repository.db.QueryContext(context, query, limit)
	if err != nil {
		return nil, fmt.Errorf("account_sqlite_list_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]*Account, 0, limit)
	for rows.Next() {
		account, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("account_sqlite_list_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account_sqlite_list_failed: %w", err)
	}

	return accounts, nil
}

func (repository *SQLiteRepository) findOne(context context.Context, query string, arg any) (*Account, error) {
	account, err := scanSQLite(repository.db.QueryRowContext(context, query, arg))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account_sqlite_find_failed: %w", err)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Account, error) {
	var account Account
	var createdAtMillis int64

	err := row.Scan(&account.ID, &account.DisplayName, &account.Email, &account.PasswordHash, &createdAtMillis)
	if err != nil {
		return nil, err
	}

	account.CreatedAt = time.UnixMilli(createdAtMillis).UTC()
	return &account, nil
}
