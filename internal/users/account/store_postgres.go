// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/fitmate/internal/platform/database/schema"
	"github.com/taibuivan/fitmate/internal/platform/dberr"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the credential store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create inserts the account and reads back its identity value.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrDuplicateEmail on SQLSTATE 23505, or execution failures
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		schema.Account.Table,
		schema.Account.DisplayName, schema.Account.Email, schema.Account.PasswordHash, schema.Account.CreatedAt,
		schema.Account.ID,
	)

	err := repository.pool.QueryRow(context, query,
		account.DisplayName, account.Email, account.PasswordHash, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		return fmt.Errorf("account_postgres_create_failed: %w", err)
	}

	return nil
}

// FindByEmail implements [Repository].
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.Email,
	)
	return repository.findOne(context, query, email)
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.ID,
	)
	return repository.findOne(context, query, id)
}

// ListRecent implements [Repository].
func (repository *PostgresRepository) ListRecent(context context.Context, limit int) ([]*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		schema.Account.SelectList(), schema.Account.Table, schema.Account.ID,
	)

	rows, err := repository.pool.Query(context, query, limit)
	if err != nil {
		return nil, fmt.Errorf("account_postgres_list_failed: %w", err)
	}

	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Account, error) {
		return scanPostgres(row)
	})
	if err != nil {
		return nil, fmt.Errorf("account_postgres_list_failed: %w", err)
	}

	return accounts, nil
}

func (repository *PostgresRepository) findOne(context context.Context, query string, arg any) (*Account, error) {
	account, err := scanPostgres(repository.pool.QueryRow(context, query, arg))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account_postgres_find_failed: %w", err)
	}
	return account, nil
}

func scanPostgres(row pgx.Row) (*Account, error) {
	var account Account
	err := row.Scan(&account.ID, &account.DisplayName, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}
