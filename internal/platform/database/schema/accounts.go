// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by the migrations.
package schema

import "strings"

// AccountTable represents the 'accounts' table
type AccountTable struct {
	Table        string
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    string
}

// Account is the schema definition for accounts
var Account = AccountTable{
	Table:        "accounts",
	ID:           "id",
	DisplayName:  "display_name",
	Email:        "email",
	PasswordHash: "password_hash",
	CreatedAt:    "created_at",
}

// Columns returns all standard column names
func (t AccountTable) Columns() []string {
	return []string{t.ID, t.DisplayName, t.Email, t.PasswordHash, t.CreatedAt}
}

// SelectList joins Columns for a SELECT clause.
func (t AccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
