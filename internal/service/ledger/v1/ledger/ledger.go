// Package ledger provides intermediary layer functionality between the DB and API endpoint handlers.

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/models/modelstorage"
	serviceErrors "github.com/stampmart/stampmart/internal/service/ledger/v1/errors"
	"github.com/stampmart/stampmart/internal/service/secretary/v1"
	"github.com/stampmart/stampmart/internal/storage/v1"
	storageErrors "github.com/stampmart/stampmart/internal/storage/v1/errors"
	"github.com/stampmart/stampmart/internal/storage/v1/rediscache"
)

const (
	accountTransactionLimit = 10
	transactionListLimit    = 50
	orderListLimit          = 20
	auditListLimit          = 50
)

// speedPostFee is the flat per-item surcharge applied when expedited delivery is requested.
var speedPostFee = decimal.NewFromInt(10)

// accountKinds limits the account dashboard listing to balance-affecting entries.
var accountKinds = []string{"deposit", "withdrawal"}

// Ledger defines attributes of a struct available to its methods.
type Ledger struct {
	storage   storage.Storage
	secretary secretary.Secretary
	cache     *rediscache.Cache
	queue     chan modelqueue.SettlementQueueEntry
	log       *zerolog.Logger
}

// InitService initializes an intermediary service for ledger data processing.
func InitService(st storage.Storage, sec secretary.Secretary, cache *rediscache.Cache, queue chan modelqueue.SettlementQueueEntry, log *zerolog.Logger) (*Ledger, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil storage was passed to service initializer"}
	}
	if sec == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil secretary was passed to service initializer"}
	}
	if queue == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil settlement queue was passed to service initializer"}
	}
	if log == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil logger was passed to service initializer"}
	}
	ledger := &Ledger{
		storage:   st,
		secretary: sec,
		cache:     cache,
		queue:     queue,
		log:       log,
	}
	return ledger, nil
}

// AddNewUser processes user register requests.
func (proc *Ledger) AddNewUser(ctx context.Context, credentials modeldto.User) (string, error) {
	accessToken, userID, err := proc.secretary.NewToken("user")
	if err != nil {
		return "", err
	}
	cipheredCredentials := modeldto.User{
		Email:    credentials.Email,
		Password: proc.secretary.Encode(credentials.Password),
	}
	err = proc.storage.AddNewUser(ctx, cipheredCredentials, userID)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// LoginUser processes user login requests.
func (proc *Ledger) LoginUser(ctx context.Context, credentials modeldto.User) (string, error) {
	cipheredCredentials := modeldto.User{
		Email:    credentials.Email,
		Password: proc.secretary.Encode(credentials.Password),
	}
	entry, err := proc.storage.CheckUser(ctx, cipheredCredentials)
	if err != nil {
		return "", err
	}
	return proc.secretary.GetTokenForUser(entry.UserID, entry.Role)
}

// GetUserInfo retrieves the user identifier and role from an access token.
func (proc *Ledger) GetUserInfo(accessToken string) (string, string, error) {
	claims, err := proc.secretary.ValidateToken(accessToken)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}

// GetAccount processes account dashboard query requests. The read never mutates
// totals; an absent account materializes with a zero balance.
func (proc *Ledger) GetAccount(ctx context.Context, userID string) (*modeldto.Account, error) {
	var cached modeldto.Account
	if proc.cache.Get(ctx, accountCacheKey(userID), &cached) {
		return &cached, nil
	}
	entry, err := proc.storage.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	account, err := proc.buildAccount(ctx, entry)
	if err != nil {
		return nil, err
	}
	proc.cache.Set(ctx, accountCacheKey(userID), account)
	return account, nil
}

// AddFunds processes deposit requests.
func (proc *Ledger) AddFunds(ctx context.Context, userID string, amount decimal.Decimal) (*modeldto.Account, error) {
	if !amount.IsPositive() {
		return nil, &serviceErrors.ServiceValidationError{Msg: "deposit amount must be positive"}
	}
	entry, err := proc.storage.Credit(ctx, userID, amount, "Added funds to account")
	if err != nil {
		return nil, err
	}
	proc.cache.Delete(ctx, accountCacheKey(userID))
	return proc.buildAccount(ctx, entry)
}

// Checkout converts a cart into one committed (order, transaction, updated account)
// triple, or none of them on an upfront rejection.
func (proc *Ledger) Checkout(ctx context.Context, userID string, checkout modeldto.NewCheckout) (*modeldto.CheckoutResult, error) {
	if !checkout.Amount.IsPositive() {
		return nil, &serviceErrors.ServiceValidationError{Msg: "checkout amount must be positive"}
	}
	if len(checkout.Items) == 0 {
		return nil, &serviceErrors.ServiceValidationError{Msg: "checkout requires at least one item"}
	}
	computed := decimal.Zero
	for _, item := range checkout.Items {
		if item.Quantity <= 0 {
			return nil, &serviceErrors.ServiceValidationError{Msg: fmt.Sprintf("item %s has a non-positive quantity", item.ID)}
		}
		if item.Price.IsNegative() {
			return nil, &serviceErrors.ServiceValidationError{Msg: fmt.Sprintf("item %s has a negative price", item.ID)}
		}
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.SpeedPost {
			line = line.Add(speedPostFee)
		}
		computed = computed.Add(line)
	}
	if !computed.Equal(checkout.Amount) {
		return nil, &serviceErrors.ServiceValidationError{Msg: fmt.Sprintf("submitted total %s does not match computed total %s", checkout.Amount.String(), computed.String())}
	}
	orderNumber := checkout.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber()
	}

	// the order number doubles as an idempotency key: a replayed checkout returns
	// the stored order without a second debit
	existing, err := proc.storage.GetOrderByNumber(ctx, userID, orderNumber)
	if err == nil {
		if !existing.TotalAmount.Equal(checkout.Amount) {
			return nil, &serviceErrors.ServiceIdempotencyConflictError{Msg: fmt.Sprintf("order %s already exists with a different total", orderNumber)}
		}
		proc.log.Info().Msg(fmt.Sprintf("checkout replay detected for order %s, short-circuiting", orderNumber))
		return proc.replayResult(ctx, userID, existing)
	}
	var notFoundError *storageErrors.NotFoundError
	if !errors.As(err, &notFoundError) {
		return nil, err
	}

	accountEntry, err := proc.storage.Debit(ctx, userID, checkout.Amount)
	if err != nil {
		return nil, err
	}
	proc.cache.Delete(ctx, accountCacheKey(userID))

	settlement := modelqueue.SettlementQueueEntry{
		UserID:      userID,
		OrderNumber: orderNumber,
		Amount:      checkout.Amount,
		Description: purchaseDescription(orderNumber, checkout.Items),
		Items:       checkout.Items,
	}
	orderEntry, err := proc.storage.AddSettlement(ctx, settlement)
	if err != nil {
		var alreadyExistsError *storageErrors.AlreadyExistsError
		if errors.As(err, &alreadyExistsError) {
			// lost the race against a concurrent duplicate submission; the other
			// request settled, so this debit must be reversed
			_, creditErr := proc.storage.Credit(ctx, userID, checkout.Amount, fmt.Sprintf("Reversal - duplicate order #%s", orderNumber))
			if creditErr != nil {
				proc.log.Error().Err(creditErr).Str("user_id", userID).Str("order_number", orderNumber).Str("amount", checkout.Amount.String()).Msg("reversal of duplicate-order debit failed")
				return nil, creditErr
			}
			proc.cache.Delete(ctx, accountCacheKey(userID))
			stored, getErr := proc.storage.GetOrderByNumber(ctx, userID, orderNumber)
			if getErr != nil {
				return nil, getErr
			}
			return proc.replayResult(ctx, userID, stored)
		}
		proc.log.Error().Err(err).Str("user_id", userID).Str("order_number", orderNumber).Str("amount", checkout.Amount.String()).Msg("settlement write failed after committed debit")
		settlement.RetryCount = 1
		settlement.LastAttempt = time.Now()
		select {
		case proc.queue <- settlement:
		default:
			proc.log.Error().Str("order_number", orderNumber).Msg("settlement reconciliation queue is full, entry dropped")
		}
		return nil, &serviceErrors.ServicePartialCommitError{OrderNumber: orderNumber, Err: err}
	}
	return &modeldto.CheckoutResult{
		Success: true,
		Order:   toOrder(orderEntry),
		Account: toAccountState(accountEntry),
	}, nil
}

// PlaceOrder processes the separate place-order path which records an order and its
// purchase transaction without settling against the deposit account.
func (proc *Ledger) PlaceOrder(ctx context.Context, userID string, newOrder modeldto.NewOrder) (*modeldto.Order, error) {
	if !newOrder.TotalAmount.IsPositive() {
		return nil, &serviceErrors.ServiceValidationError{Msg: "order total must be positive"}
	}
	if len(newOrder.Items) == 0 {
		return nil, &serviceErrors.ServiceValidationError{Msg: "order requires at least one item"}
	}
	orderNumber := generateOrderNumber()
	entry, err := proc.storage.AddPendingOrder(ctx, modelqueue.SettlementQueueEntry{
		UserID:      userID,
		OrderNumber: orderNumber,
		Amount:      newOrder.TotalAmount,
		Description: fmt.Sprintf("Purchase for order #%s", orderNumber),
		Items:       newOrder.Items,
	})
	if err != nil {
		return nil, err
	}
	order := toOrder(entry)
	return &order, nil
}

// GetOrders processes order listing requests.
func (proc *Ledger) GetOrders(ctx context.Context, userID string) ([]modeldto.Order, error) {
	entries, err := proc.storage.GetOrders(ctx, userID, orderListLimit)
	if err != nil {
		return nil, err
	}
	var orders []modeldto.Order
	for _, entry := range entries {
		orders = append(orders, toOrder(entry))
	}
	return orders, nil
}

// GetTransactions processes transaction listing requests.
func (proc *Ledger) GetTransactions(ctx context.Context, userID string) ([]modeldto.TransactionInfo, error) {
	entries, err := proc.storage.GetRecentTransactions(ctx, userID, nil, transactionListLimit)
	if err != nil {
		return nil, err
	}
	return toTransactionInfos(entries), nil
}

// GetAuditTrail processes cross-user transaction listing requests for author-role users.
func (proc *Ledger) GetAuditTrail(ctx context.Context) ([]modeldto.TransactionInfo, error) {
	entries, err := proc.storage.GetAuditTransactions(ctx, auditListLimit)
	if err != nil {
		return nil, err
	}
	return toTransactionInfos(entries), nil
}

func (proc *Ledger) buildAccount(ctx context.Context, entry modelstorage.AccountStorageEntry) (*modeldto.Account, error) {
	transactions, err := proc.storage.GetRecentTransactions(ctx, entry.UserID, accountKinds, accountTransactionLimit)
	if err != nil {
		return nil, err
	}
	infos := toTransactionInfos(transactions)
	if infos == nil {
		infos = []modeldto.TransactionInfo{}
	}
	return &modeldto.Account{
		Balance:       entry.Balance,
		TotalDeposits: entry.TotalDeposits,
		TotalSpent:    entry.TotalSpent,
		Transactions:  infos,
	}, nil
}

func (proc *Ledger) replayResult(ctx context.Context, userID string, order modelstorage.OrderStorageEntry) (*modeldto.CheckoutResult, error) {
	accountEntry, err := proc.storage.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &modeldto.CheckoutResult{
		Success: true,
		Order:   toOrder(order),
		Account: toAccountState(accountEntry),
	}, nil
}

func toAccountState(entry modelstorage.AccountStorageEntry) modeldto.AccountState {
	return modeldto.AccountState{
		Balance:       entry.Balance,
		TotalDeposits: entry.TotalDeposits,
		TotalSpent:    entry.TotalSpent,
	}
}

func toOrder(entry modelstorage.OrderStorageEntry) modeldto.Order {
	var items []modeldto.OrderItem
	if len(entry.Items) > 0 {
		// a corrupt snapshot degrades to an empty item list rather than failing the read
		_ = json.Unmarshal(entry.Items, &items)
	}
	return modeldto.Order{
		OrderNumber: entry.OrderNumber,
		TotalAmount: entry.TotalAmount,
		Status:      entry.Status,
		Items:       items,
		CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionInfos(entries []modelstorage.TransactionStorageEntry) []modeldto.TransactionInfo {
	var infos []modeldto.TransactionInfo
	for _, entry := range entries {
		kind := entry.Kind
		if kind == "" {
			kind = "unknown"
		}
		infos = append(infos, modeldto.TransactionInfo{
			ID:          entry.ID,
			Kind:        kind,
			Amount:      entry.Amount,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return infos
}

func purchaseDescription(orderNumber string, items []modeldto.OrderItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Item"
		}
		names = append(names, name)
	}
	return fmt.Sprintf("Purchase - Order #%s (%s)", orderNumber, strings.Join(names, ", "))
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

func accountCacheKey(userID string) string {
	return "account:" + userID
}
