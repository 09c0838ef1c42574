// Package modelstorage provides types for querying relational DB.

package modelstorage

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserStorageEntry struct {
	ID           uint      `db:"id"`
	UserID       string    `db:"user_id"`
	Email        string    `db:"email"`
	Password     string    `db:"password"`
	Role         string    `db:"role"`
	RegisteredAt time.Time `db:"registered_at"`
}

type AccountStorageEntry struct {
	ID            uint            `db:"id"`
	UserID        string          `db:"user_id"`
	Balance       decimal.Decimal `db:"balance"`
	TotalDeposits decimal.Decimal `db:"total_deposits"`
	TotalSpent    decimal.Decimal `db:"total_spent"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type TransactionStorageEntry struct {
	ID          int64           `db:"id"`
	UserID      string          `db:"user_id"`
	Kind        string          `db:"kind"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Status      string          `db:"status"`
	OrderID     int64           `db:"order_id"`
	Items       []byte          `db:"items"`
	CreatedAt   time.Time       `db:"created_at"`
}

type OrderStorageEntry struct {
	ID          int64           `db:"id"`
	UserID      string          `db:"user_id"`
	OrderNumber string          `db:"order_number"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	Items       []byte          `db:"items"`
	CreatedAt   time.Time       `db:"created_at"`
}
