package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/models/modelstorage"
)

type Identity interface {
	AddNewUser(ctx context.Context, credentials modeldto.User, userID string) error
	CheckUser(ctx context.Context, credentials modeldto.User) (modelstorage.UserStorageEntry, error)
}

type Ledger interface {
	GetAccount(ctx context.Context, userID string) (modelstorage.AccountStorageEntry, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, description string) (modelstorage.AccountStorageEntry, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (modelstorage.AccountStorageEntry, error)
	AddSettlement(ctx context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error)
	AddPendingOrder(ctx context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error)
	GetOrderByNumber(ctx context.Context, userID string, orderNumber string) (modelstorage.OrderStorageEntry, error)
	GetOrders(ctx context.Context, userID string, limit int) ([]modelstorage.OrderStorageEntry, error)
	GetRecentTransactions(ctx context.Context, userID string, kinds []string, limit int) ([]modelstorage.TransactionStorageEntry, error)
	GetAuditTransactions(ctx context.Context, limit int) ([]modelstorage.TransactionStorageEntry, error)
}

type Storage interface {
	Identity
	Ledger
}
