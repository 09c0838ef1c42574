// Package modelqueue provides types for queueing pieces of data.

package modelqueue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/models/modeldto"
)

type SettlementQueueEntry struct {
	UserID      string
	OrderNumber string
	Amount      decimal.Decimal
	Description string
	Items       []modeldto.OrderItem
	RetryCount  int
	LastAttempt time.Time
}
