package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/models/modelstorage"
	serviceErrors "github.com/stampmart/stampmart/internal/service/ledger/v1/errors"
	"github.com/stampmart/stampmart/internal/service/secretary/v1/secretary"
	storageErrors "github.com/stampmart/stampmart/internal/storage/v1/errors"
)

// fakeStore mimics the PSQL storage semantics in memory: lazy account creation,
// atomic conditional debit and an order-number uniqueness constraint.
type fakeStore struct {
	mu               sync.Mutex
	users            map[string]modelstorage.UserStorageEntry
	accounts         map[string]modelstorage.AccountStorageEntry
	orders           map[string]modelstorage.OrderStorageEntry
	transactions     []modelstorage.TransactionStorageEntry
	nextID           int64
	settlementCalls  int
	failSettlement   error
	conflictOnSettle bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]modelstorage.UserStorageEntry),
		accounts: make(map[string]modelstorage.AccountStorageEntry),
		orders:   make(map[string]modelstorage.OrderStorageEntry),
	}
}

func (f *fakeStore) AddNewUser(_ context.Context, credentials modeldto.User, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == credentials.Email {
			return &storageErrors.AlreadyExistsError{Err: errors.New("unique violation"), ID: credentials.Email}
		}
	}
	f.users[userID] = modelstorage.UserStorageEntry{UserID: userID, Email: credentials.Email, Password: credentials.Password, Role: "user", RegisteredAt: time.Now()}
	return nil
}

func (f *fakeStore) CheckUser(_ context.Context, credentials modeldto.User) (modelstorage.UserStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == credentials.Email && u.Password == credentials.Password {
			return u, nil
		}
	}
	return modelstorage.UserStorageEntry{}, &storageErrors.NotFoundError{Err: errors.New("no such user")}
}

func (f *fakeStore) getAccountLocked(userID string) modelstorage.AccountStorageEntry {
	entry, ok := f.accounts[userID]
	if !ok {
		entry = modelstorage.AccountStorageEntry{UserID: userID, Balance: decimal.Zero, TotalDeposits: decimal.Zero, TotalSpent: decimal.Zero, UpdatedAt: time.Now()}
		f.accounts[userID] = entry
	}
	return entry
}

func (f *fakeStore) GetAccount(_ context.Context, userID string) (modelstorage.AccountStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getAccountLocked(userID), nil
}

func (f *fakeStore) appendTransactionLocked(userID, kind string, amount decimal.Decimal, description string, orderID int64) {
	f.nextID++
	f.transactions = append(f.transactions, modelstorage.TransactionStorageEntry{
		ID:          f.nextID,
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Status:      "completed",
		OrderID:     orderID,
		CreatedAt:   time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	})
}

func (f *fakeStore) Credit(_ context.Context, userID string, amount decimal.Decimal, description string) (modelstorage.AccountStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.getAccountLocked(userID)
	entry.Balance = entry.Balance.Add(amount)
	entry.TotalDeposits = entry.TotalDeposits.Add(amount)
	entry.UpdatedAt = time.Now()
	f.accounts[userID] = entry
	f.appendTransactionLocked(userID, "deposit", amount, description, 0)
	return entry, nil
}

func (f *fakeStore) Debit(_ context.Context, userID string, amount decimal.Decimal) (modelstorage.AccountStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.getAccountLocked(userID)
	if entry.Balance.LessThan(amount) {
		return modelstorage.AccountStorageEntry{}, &storageErrors.InsufficientFundsError{CurrentBalance: entry.Balance, RequiredAmount: amount}
	}
	entry.Balance = entry.Balance.Sub(amount)
	entry.TotalSpent = entry.TotalSpent.Add(amount)
	entry.UpdatedAt = time.Now()
	f.accounts[userID] = entry
	return entry, nil
}

func orderKey(userID, orderNumber string) string {
	return userID + "|" + orderNumber
}

func (f *fakeStore) addOrderLocked(settlement modelqueue.SettlementQueueEntry, status, txKind string, linkOrder bool) (modelstorage.OrderStorageEntry, error) {
	key := orderKey(settlement.UserID, settlement.OrderNumber)
	if _, ok := f.orders[key]; ok {
		return modelstorage.OrderStorageEntry{}, &storageErrors.AlreadyExistsError{Err: errors.New("unique violation"), ID: settlement.OrderNumber}
	}
	items, _ := json.Marshal(settlement.Items)
	f.nextID++
	order := modelstorage.OrderStorageEntry{
		ID:          f.nextID,
		UserID:      settlement.UserID,
		OrderNumber: settlement.OrderNumber,
		TotalAmount: settlement.Amount,
		Status:      status,
		Items:       items,
		CreatedAt:   time.Now(),
	}
	f.orders[key] = order
	var orderID int64
	if linkOrder {
		orderID = order.ID
	}
	f.appendTransactionLocked(settlement.UserID, txKind, settlement.Amount, settlement.Description, orderID)
	return order, nil
}

func (f *fakeStore) AddSettlement(_ context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settlementCalls++
	if f.conflictOnSettle {
		// emulate a concurrent duplicate landing first: its order is stored and the
		// uniqueness constraint rejects this write
		f.conflictOnSettle = false
		_, _ = f.addOrderLocked(settlement, "completed", "withdrawal", true)
		return modelstorage.OrderStorageEntry{}, &storageErrors.AlreadyExistsError{Err: errors.New("unique violation"), ID: settlement.OrderNumber}
	}
	if f.failSettlement != nil {
		return modelstorage.OrderStorageEntry{}, f.failSettlement
	}
	return f.addOrderLocked(settlement, "completed", "withdrawal", true)
}

func (f *fakeStore) AddPendingOrder(_ context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addOrderLocked(settlement, "pending", "purchase", false)
}

func (f *fakeStore) GetOrderByNumber(_ context.Context, userID string, orderNumber string) (modelstorage.OrderStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderKey(userID, orderNumber)]
	if !ok {
		return modelstorage.OrderStorageEntry{}, &storageErrors.NotFoundError{Err: errors.New("no such order")}
	}
	return order, nil
}

func (f *fakeStore) GetOrders(_ context.Context, userID string, limit int) ([]modelstorage.OrderStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []modelstorage.OrderStorageEntry
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (f *fakeStore) GetRecentTransactions(_ context.Context, userID string, kinds []string, limit int) ([]modelstorage.TransactionStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []modelstorage.TransactionStorageEntry
	for i := len(f.transactions) - 1; i >= 0 && len(entries) < limit; i-- {
		tx := f.transactions[i]
		if tx.UserID != userID {
			continue
		}
		if len(kinds) > 0 {
			matched := false
			for _, kind := range kinds {
				if tx.Kind == kind {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		entries = append(entries, tx)
	}
	return entries, nil
}

func (f *fakeStore) GetAuditTransactions(_ context.Context, limit int) ([]modelstorage.TransactionStorageEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []modelstorage.TransactionStorageEntry
	for i := len(f.transactions) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, f.transactions[i])
	}
	return entries, nil
}

func newTestService(t *testing.T, store *fakeStore) (*Ledger, chan modelqueue.SettlementQueueEntry) {
	t.Helper()
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: "test_secret_key"})
	if err != nil {
		t.Fatalf("could not initialize secretary: %v", err)
	}
	queue := make(chan modelqueue.SettlementQueueEntry, 10)
	log := zerolog.Nop()
	svc, err := InitService(store, sec, nil, queue, &log)
	if err != nil {
		t.Fatalf("could not initialize service: %v", err)
	}
	return svc, queue
}

func checkInvariant(t *testing.T, account modeldto.AccountState) {
	t.Helper()
	if !account.Balance.Equal(account.TotalDeposits.Sub(account.TotalSpent)) {
		t.Fatalf("invariant violated: balance %s != deposits %s - spent %s", account.Balance, account.TotalDeposits, account.TotalSpent)
	}
}

func cartFor(amount int64) modeldto.NewCheckout {
	price := decimal.NewFromInt(amount)
	return modeldto.NewCheckout{
		Amount: price,
		Items:  []modeldto.OrderItem{{ID: "stamp-1", Name: "Penny Black", Price: price, Quantity: 1}},
	}
}

func TestAddFundsKeepsInvariant(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore())
	ctx := context.Background()

	account, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", account.Balance)
	}
	checkInvariant(t, modeldto.AccountState{Balance: account.Balance, TotalDeposits: account.TotalDeposits, TotalSpent: account.TotalSpent})

	account, err = svc.AddFunds(ctx, "user-1", decimal.NewFromFloat(49.99))
	if err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromFloat(149.99)) {
		t.Fatalf("expected balance 149.99, got %s", account.Balance)
	}
	if len(account.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(account.Transactions))
	}
	if account.Transactions[0].Kind != "deposit" {
		t.Fatalf("expected deposit transaction, got %s", account.Transactions[0].Kind)
	}
}

func TestAddFundsRejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore())
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.AddFunds(context.Background(), "user-1", amount)
		var validationError *serviceErrors.ServiceValidationError
		if !errors.As(err, &validationError) {
			t.Fatalf("expected validation error for amount %s, got %v", amount, err)
		}
	}
}

func TestCheckoutSettlesOrderAndTransaction(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := cartFor(600)
	checkout.OrderNumber = "ORD-1"
	result, err := svc.Checkout(ctx, "user-1", checkout)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected a successful checkout")
	}
	if result.Order.OrderNumber != "ORD-1" || result.Order.Status != "completed" {
		t.Fatalf("unexpected order: %+v", result.Order)
	}
	if !result.Account.Balance.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected balance 400, got %s", result.Account.Balance)
	}
	checkInvariant(t, result.Account)

	// the settlement pairs the order with exactly one withdrawal transaction
	txs, err := store.GetRecentTransactions(ctx, "user-1", []string{"withdrawal"}, 10)
	if err != nil {
		t.Fatalf("GetRecentTransactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 withdrawal transaction, got %d", len(txs))
	}
	if txs[0].OrderID == 0 {
		t.Fatal("withdrawal transaction is not linked to its order")
	}
	if !txs[0].Amount.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected withdrawal of 600, got %s", txs[0].Amount)
	}
}

func TestCheckoutInsufficientFundsHasNoSideEffects(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	first := cartFor(600)
	first.OrderNumber = "ORD-1"
	if _, err := svc.Checkout(ctx, "user-1", first); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	second := cartFor(500)
	second.OrderNumber = "ORD-2"
	_, err := svc.Checkout(ctx, "user-1", second)
	var insufficientFundsError *storageErrors.InsufficientFundsError
	if !errors.As(err, &insufficientFundsError) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if !insufficientFundsError.CurrentBalance.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected reported balance 400, got %s", insufficientFundsError.CurrentBalance)
	}
	if !insufficientFundsError.RequiredAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected reported requirement 500, got %s", insufficientFundsError.RequiredAmount)
	}

	// the rejection leaves no trace: no order, no transaction, untouched totals
	if _, err := store.GetOrderByNumber(ctx, "user-1", "ORD-2"); err == nil {
		t.Fatal("rejected checkout must not record an order")
	}
	account, err := svc.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(400)) || !account.TotalSpent.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("rejected checkout mutated the account: %+v", account)
	}
}

func TestCheckoutRejectsTotalMismatch(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore())
	checkout := cartFor(300)
	checkout.Amount = decimal.NewFromInt(250)
	_, err := svc.Checkout(context.Background(), "user-1", checkout)
	var validationError *serviceErrors.ServiceValidationError
	if !errors.As(err, &validationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutAppliesSpeedPostSurcharge(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := modeldto.NewCheckout{
		Amount:      decimal.NewFromInt(70),
		OrderNumber: "ORD-SP",
		Items: []modeldto.OrderItem{
			{ID: "stamp-1", Name: "Penny Black", Price: decimal.NewFromInt(30), Quantity: 2, SpeedPost: true},
		},
	}
	result, err := svc.Checkout(ctx, "user-1", checkout)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if !result.Account.Balance.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected balance 30 after surcharged checkout, got %s", result.Account.Balance)
	}
}

func TestCheckoutReplayIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := cartFor(300)
	checkout.OrderNumber = "ORD-REPLAY"
	first, err := svc.Checkout(ctx, "user-1", checkout)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	second, err := svc.Checkout(ctx, "user-1", checkout)
	if err != nil {
		t.Fatalf("replayed checkout failed: %v", err)
	}
	if second.Order.OrderNumber != first.Order.OrderNumber {
		t.Fatalf("replay returned a different order: %s vs %s", second.Order.OrderNumber, first.Order.OrderNumber)
	}
	if store.settlementCalls != 1 {
		t.Fatalf("expected a single settlement, got %d", store.settlementCalls)
	}
	if !second.Account.Balance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("replay must not debit twice, balance %s", second.Account.Balance)
	}
}

func TestCheckoutReplayWithDifferentTotalConflicts(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := cartFor(300)
	checkout.OrderNumber = "ORD-CONFLICT"
	if _, err := svc.Checkout(ctx, "user-1", checkout); err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	other := cartFor(400)
	other.OrderNumber = "ORD-CONFLICT"
	_, err := svc.Checkout(ctx, "user-1", other)
	var conflictError *serviceErrors.ServiceIdempotencyConflictError
	if !errors.As(err, &conflictError) {
		t.Fatalf("expected idempotency conflict error, got %v", err)
	}
}

func TestConcurrentCheckoutsRespectBalance(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(400)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			checkout := cartFor(300)
			checkout.OrderNumber = fmt.Sprintf("ORD-RACE-%d", i)
			_, results[i] = svc.Checkout(ctx, "user-1", checkout)
		}(i)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var insufficientFundsError *storageErrors.InsufficientFundsError
		if errors.As(err, &insufficientFundsError) {
			rejections++
		} else {
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if successes != 1 || rejections != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", successes, rejections)
	}
	account, err := svc.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100 after the race, got %s", account.Balance)
	}
	checkInvariant(t, modeldto.AccountState{Balance: account.Balance, TotalDeposits: account.TotalDeposits, TotalSpent: account.TotalSpent})
}

func TestCheckoutPartialCommitQueuesSettlement(t *testing.T) {
	store := newFakeStore()
	store.failSettlement = &storageErrors.ExecutionPSQLError{Err: errors.New("connection reset")}
	svc, queue := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := cartFor(200)
	checkout.OrderNumber = "ORD-PARTIAL"
	_, err := svc.Checkout(ctx, "user-1", checkout)
	var partialCommitError *serviceErrors.ServicePartialCommitError
	if !errors.As(err, &partialCommitError) {
		t.Fatalf("expected partial commit error, got %v", err)
	}
	if partialCommitError.OrderNumber != "ORD-PARTIAL" {
		t.Fatalf("unexpected order number in error: %s", partialCommitError.OrderNumber)
	}

	// the debit stays committed and the orphaned settlement lands on the retry queue
	account, err := svc.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected committed debit to persist, balance %s", account.Balance)
	}
	select {
	case entry := <-queue:
		if entry.OrderNumber != "ORD-PARTIAL" || entry.RetryCount != 1 {
			t.Fatalf("unexpected queue entry: %+v", entry)
		}
	default:
		t.Fatal("expected an entry on the settlement queue")
	}
}

func TestCheckoutDuplicateRaceReversesDebit(t *testing.T) {
	store := newFakeStore()
	store.conflictOnSettle = true
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("AddFunds failed: %v", err)
	}
	checkout := cartFor(200)
	checkout.OrderNumber = "ORD-DUP"
	result, err := svc.Checkout(ctx, "user-1", checkout)
	if err != nil {
		t.Fatalf("expected the duplicate to resolve to the stored order, got %v", err)
	}
	if result.Order.OrderNumber != "ORD-DUP" {
		t.Fatalf("unexpected order: %+v", result.Order)
	}

	// the compensating credit restores the duplicate debit
	account, err := svc.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected reversal back to 500, got %s", account.Balance)
	}
	txs, err := store.GetRecentTransactions(ctx, "user-1", []string{"deposit"}, 10)
	if err != nil {
		t.Fatalf("GetRecentTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected original deposit plus reversal, got %d", len(txs))
	}
	if txs[0].Description != "Reversal - duplicate order #ORD-DUP" {
		t.Fatalf("unexpected reversal description: %s", txs[0].Description)
	}
}

func TestAccountListsRecentBalanceTransactionsOnly(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := svc.AddFunds(ctx, "user-1", decimal.NewFromInt(10)); err != nil {
			t.Fatalf("AddFunds failed: %v", err)
		}
	}
	// a pending order writes a purchase transaction which must stay off the dashboard
	if _, err := svc.PlaceOrder(ctx, "user-1", modeldto.NewOrder{
		TotalAmount: decimal.NewFromInt(30),
		Items:       []modeldto.OrderItem{{ID: "stamp-2", Name: "Inverted Jenny", Price: decimal.NewFromInt(30), Quantity: 1}},
	}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	account, err := svc.GetAccount(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if len(account.Transactions) != 10 {
		t.Fatalf("expected the listing capped at 10, got %d", len(account.Transactions))
	}
	for i, tx := range account.Transactions {
		if tx.Kind != "deposit" && tx.Kind != "withdrawal" {
			t.Fatalf("unexpected transaction kind on the dashboard: %s", tx.Kind)
		}
		if i > 0 && account.Transactions[i-1].ID < tx.ID {
			t.Fatal("transactions are not in reverse chronological order")
		}
	}
}

func TestMalformedTransactionDefaults(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	store.mu.Lock()
	store.transactions = append(store.transactions, modelstorage.TransactionStorageEntry{
		ID:     1,
		UserID: "user-1",
		Amount: decimal.Zero,
	})
	store.mu.Unlock()

	infos, err := svc.GetTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected the malformed row to survive the read, got %d rows", len(infos))
	}
	if infos[0].Kind != "unknown" {
		t.Fatalf("expected kind to default to unknown, got %q", infos[0].Kind)
	}
	if !infos[0].Amount.Equal(decimal.Zero) {
		t.Fatalf("expected amount to default to zero, got %s", infos[0].Amount)
	}
}

func TestRegisterLoginAndRoleClaims(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	credentials := modeldto.User{Email: "collector@example.com", Password: "hunter2"}
	token, err := svc.AddNewUser(ctx, credentials)
	if err != nil {
		t.Fatalf("AddNewUser failed: %v", err)
	}
	userID, role, err := svc.GetUserInfo(token)
	if err != nil {
		t.Fatalf("GetUserInfo failed: %v", err)
	}
	if userID == "" || role != "user" {
		t.Fatalf("unexpected claims: %q %q", userID, role)
	}

	if _, err = svc.AddNewUser(ctx, credentials); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	loginToken, err := svc.LoginUser(ctx, credentials)
	if err != nil {
		t.Fatalf("LoginUser failed: %v", err)
	}
	loginUserID, _, err := svc.GetUserInfo(loginToken)
	if err != nil {
		t.Fatalf("GetUserInfo failed: %v", err)
	}
	if loginUserID == "" {
		t.Fatal("expected a user identifier in the login token")
	}

	_, err = svc.LoginUser(ctx, modeldto.User{Email: credentials.Email, Password: "wrong"})
	var notFoundError *storageErrors.NotFoundError
	if !errors.As(err, &notFoundError) {
		t.Fatalf("expected not found error for bad credentials, got %v", err)
	}
}
