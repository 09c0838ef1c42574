package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/models/modeldto"
)

// Processor defines a set of methods for types implementing Processor.
type Processor interface {
	AddNewUser(ctx context.Context, credentials modeldto.User) (string, error)
	LoginUser(ctx context.Context, credentials modeldto.User) (string, error)
	GetUserInfo(accessToken string) (string, string, error)
	GetAccount(ctx context.Context, userID string) (*modeldto.Account, error)
	AddFunds(ctx context.Context, userID string, amount decimal.Decimal) (*modeldto.Account, error)
	Checkout(ctx context.Context, userID string, checkout modeldto.NewCheckout) (*modeldto.CheckoutResult, error)
	PlaceOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (*modeldto.Order, error)
	GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error)
	GetTransactions(ctx context.Context, userID string) ([]modeldto.TransactionInfo, error)
	GetAuditTrail(ctx context.Context) ([]modeldto.TransactionInfo, error)
}
