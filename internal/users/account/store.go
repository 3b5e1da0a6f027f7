// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
)

// # Account Data Access

// Repository defines the data access contract for accounts.
//
// Implementations must use parameterized queries only and must report a
// UNIQUE violation on email as [ErrDuplicateEmail].
type Repository interface {

	/*
		Create inserts a new account and sets its server-assigned ID.

		Parameters:
		  - context: context.Context
		  - account: *Account (Email already normalized, PasswordHash set)

		Returns:
		  - error: ErrDuplicateEmail or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByEmail returns the account with the given normalized email.

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	/*
		ListRecent returns up to limit accounts, newest first.
	*/
	ListRecent(context context.Context, limit int) ([]*Account, error)
}
