// Package modeldto provides types for API data interchange.

package modeldto

import (
	"github.com/shopspring/decimal"
)

type (
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	OrderItem struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Quantity  int             `json:"quantity"`
		ImageURL  string          `json:"image_url,omitempty"`
		SpeedPost bool            `json:"speed_post,omitempty"`
	}
	TransactionInfo struct {
		ID          int64           `json:"id"`
		Kind        string          `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CreatedAt   string          `json:"created_at"`
	}
	AccountState struct {
		Balance       decimal.Decimal `json:"balance"`
		TotalDeposits decimal.Decimal `json:"total_deposits"`
		TotalSpent    decimal.Decimal `json:"total_spent"`
	}
	Account struct {
		Balance       decimal.Decimal   `json:"balance"`
		TotalDeposits decimal.Decimal   `json:"total_deposits"`
		TotalSpent    decimal.Decimal   `json:"total_spent"`
		Transactions  []TransactionInfo `json:"transactions"`
	}
	NewCredit struct {
		Amount decimal.Decimal `json:"amount"`
	}
	NewCheckout struct {
		Amount      decimal.Decimal `json:"amount"`
		OrderNumber string          `json:"order"`
		Items       []OrderItem     `json:"items"`
	}
	NewOrder struct {
		TotalAmount decimal.Decimal `json:"total_amount"`
		Items       []OrderItem     `json:"items"`
	}
	Order struct {
		OrderNumber string          `json:"order_number"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		Status      string          `json:"status"`
		Items       []OrderItem     `json:"items"`
		CreatedAt   string          `json:"created_at"`
	}
	CheckoutResult struct {
		Success bool         `json:"success"`
		Order   Order        `json:"order"`
		Account AccountState `json:"account"`
	}
	InsufficientFunds struct {
		Error          string          `json:"error"`
		CurrentBalance decimal.Decimal `json:"current_balance"`
		RequiredAmount decimal.Decimal `json:"required_amount"`
	}
	SettlementIncident struct {
		UserID      string          `json:"user_id"`
		OrderNumber string          `json:"order_number"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Attempts    int             `json:"attempts"`
		Error       string          `json:"error"`
	}
)
