// Package inpsql provides PSQL storage functionality for the deposit-account ledger.

package inpsql

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stampmart/stampmart/internal/config"
	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/models/modelstorage"
	storageErrors "github.com/stampmart/stampmart/internal/storage/v1/errors"
)

type Storage struct {
	Cfg *config.StorageConfig
	DB  *sql.DB
	log *zerolog.Logger
}

// InitStorage initializes a Storage object, sets its attributes and creates tables if necessary.
func InitStorage(ctx context.Context, cfg *config.StorageConfig, log *zerolog.Logger, wg *sync.WaitGroup) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	st := Storage{
		Cfg: cfg,
		DB:  db,
		log: log,
	}
	err = st.createTables(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		err := st.DB.Close()
		if err != nil {
			st.log.Error().Err(err).Msg("PSQL DB connection closure failed")
		}
		st.log.Info().Msg("PSQL DB connection closed successfully")
	}()
	log.Info().Msg("PSQL DB connection was established")
	return &st, nil
}

// AddNewUser adds a user entry alongside a zero-balance deposit account.
func (s *Storage) AddNewUser(ctx context.Context, credentials modeldto.User, userID string) error {
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		_, err = tx.ExecContext(ctx, "INSERT INTO users (user_id, email, password, role, registered_at) VALUES ($1, $2, $3, $4, $5)",
			userID, credentials.Email, credentials.Password, "user", time.Now())
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: credentials.Email}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO deposit_accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new user failed for %s", credentials.Email))
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new user failed for %s", credentials.Email))
		return methodErr
	case <-chanOk:
		s.log.Info().Msg("adding new user done")
		return nil
	}
}

// CheckUser authenticates a user entry against stored ciphered credentials.
func (s *Storage) CheckUser(ctx context.Context, credentials modeldto.User) (modelstorage.UserStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, email, password, role, registered_at FROM users WHERE email = $1")
	if err != nil {
		return modelstorage.UserStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.UserStorageEntry)
	chanEr := make(chan error)
	go func() {
		var queryOutput modelstorage.UserStorageEntry
		err := selectStmt.QueryRowContext(ctx, credentials.Email).Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Email, &queryOutput.Password, &queryOutput.Role, &queryOutput.RegisteredAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- err
				return
			}
		}
		passwordHash := sha256.Sum256([]byte(credentials.Password))
		expectedPasswordHash := sha256.Sum256([]byte(queryOutput.Password))
		passwordMatch := subtle.ConstantTimeCompare(passwordHash[:], expectedPasswordHash[:]) == 1
		if !passwordMatch {
			chanEr <- &storageErrors.NotFoundError{Err: nil}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("user authentication failed")
		return modelstorage.UserStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("user authentication failed")
		return modelstorage.UserStorageEntry{}, methodErr
	case entry := <-chanOk:
		s.log.Info().Msg("user authentication done")
		return entry, nil
	}
}

// GetAccount retrieves a deposit account, lazily creating a zero-balance one on first access.
func (s *Storage) GetAccount(ctx context.Context, userID string) (modelstorage.AccountStorageEntry, error) {
	chanOk := make(chan modelstorage.AccountStorageEntry)
	chanEr := make(chan error)
	go func() {
		_, err := s.DB.ExecContext(ctx, "INSERT INTO deposit_accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		var queryOutput modelstorage.AccountStorageEntry
		err = s.DB.QueryRowContext(ctx, "SELECT id, user_id, balance, total_deposits, total_spent, updated_at FROM deposit_accounts WHERE user_id = $1", userID).
			Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Balance, &queryOutput.TotalDeposits, &queryOutput.TotalSpent, &queryOutput.UpdatedAt)
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting deposit account failed")
		return modelstorage.AccountStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting deposit account failed")
		return modelstorage.AccountStorageEntry{}, methodErr
	case entry := <-chanOk:
		return entry, nil
	}
}

// Credit atomically tops up a deposit account and records the corresponding deposit transaction.
func (s *Storage) Credit(ctx context.Context, userID string, amount decimal.Decimal, description string) (modelstorage.AccountStorageEntry, error) {
	chanOk := make(chan modelstorage.AccountStorageEntry)
	chanEr := make(chan error)
	go func() {
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		var queryOutput modelstorage.AccountStorageEntry
		err = tx.QueryRowContext(ctx, `INSERT INTO deposit_accounts (user_id, balance, total_deposits)
			VALUES ($1, $2, $2)
			ON CONFLICT (user_id) DO UPDATE
			SET balance = deposit_accounts.balance + EXCLUDED.balance,
			    total_deposits = deposit_accounts.total_deposits + EXCLUDED.total_deposits,
			    updated_at = now()
			RETURNING id, user_id, balance, total_deposits, total_spent, updated_at`, userID, amount).
			Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Balance, &queryOutput.TotalDeposits, &queryOutput.TotalSpent, &queryOutput.UpdatedAt)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO transactions (user_id, kind, amount, description, status) VALUES ($1, 'deposit', $2, $3, 'completed')",
			userID, amount, description)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("crediting deposit account failed for %s", userID))
		return modelstorage.AccountStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("crediting deposit account failed for %s", userID))
		return modelstorage.AccountStorageEntry{}, methodErr
	case entry := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("crediting deposit account done for %s", userID))
		return entry, nil
	}
}

// Debit applies a conditional balance decrement as a single statement so that two
// concurrent debits can never both pass the funds check against a stale read.
func (s *Storage) Debit(ctx context.Context, userID string, amount decimal.Decimal) (modelstorage.AccountStorageEntry, error) {
	chanOk := make(chan modelstorage.AccountStorageEntry)
	chanEr := make(chan error)
	go func() {
		var queryOutput modelstorage.AccountStorageEntry
		err := s.DB.QueryRowContext(ctx, `UPDATE deposit_accounts
			SET balance = balance - $1, total_spent = total_spent + $1, updated_at = now()
			WHERE user_id = $2 AND balance >= $1
			RETURNING id, user_id, balance, total_deposits, total_spent, updated_at`, amount, userID).
			Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.Balance, &queryOutput.TotalDeposits, &queryOutput.TotalSpent, &queryOutput.UpdatedAt)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
				return
			}
			// zero rows means the account is missing or underfunded; report the current balance
			current := decimal.Zero
			err = s.DB.QueryRowContext(ctx, "SELECT balance FROM deposit_accounts WHERE user_id = $1", userID).Scan(&current)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
				return
			}
			chanEr <- &storageErrors.InsufficientFundsError{CurrentBalance: current, RequiredAmount: amount}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("debiting deposit account failed for %s", userID))
		return modelstorage.AccountStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("debiting deposit account failed for %s", userID))
		return modelstorage.AccountStorageEntry{}, methodErr
	case entry := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("debiting deposit account done for %s", userID))
		return entry, nil
	}
}

// AddSettlement writes the order and its referencing withdrawal transaction as one unit of work.
func (s *Storage) AddSettlement(ctx context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error) {
	return s.addOrderWithTransaction(ctx, settlement, "completed", "withdrawal", true)
}

// AddPendingOrder writes an unsettled order alongside a purchase transaction, leaving the balance untouched.
func (s *Storage) AddPendingOrder(ctx context.Context, settlement modelqueue.SettlementQueueEntry) (modelstorage.OrderStorageEntry, error) {
	return s.addOrderWithTransaction(ctx, settlement, "pending", "purchase", false)
}

func (s *Storage) addOrderWithTransaction(ctx context.Context, settlement modelqueue.SettlementQueueEntry, orderStatus, txKind string, linkOrder bool) (modelstorage.OrderStorageEntry, error) {
	items, err := json.Marshal(settlement.Items)
	if err != nil {
		return modelstorage.OrderStorageEntry{}, &storageErrors.ExecutionPSQLError{Err: err}
	}
	chanOk := make(chan modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		queryOutput := modelstorage.OrderStorageEntry{
			UserID:      settlement.UserID,
			OrderNumber: settlement.OrderNumber,
			TotalAmount: settlement.Amount,
			Status:      orderStatus,
			Items:       items,
		}
		err = tx.QueryRowContext(ctx, "INSERT INTO orders (user_id, order_number, total_amount, status, items) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at",
			settlement.UserID, settlement.OrderNumber, settlement.Amount, orderStatus, items).
			Scan(&queryOutput.ID, &queryOutput.CreatedAt)
		if err != nil {
			if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
				chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: settlement.OrderNumber}
				return
			}
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		var orderID interface{}
		if linkOrder {
			orderID = queryOutput.ID
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO transactions (user_id, kind, amount, description, status, order_id, items) VALUES ($1, $2, $3, $4, 'completed', $5, $6)",
			settlement.UserID, txKind, settlement.Amount, settlement.Description, orderID, items)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding order %s failed", settlement.OrderNumber))
		return modelstorage.OrderStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding order %s failed", settlement.OrderNumber))
		return modelstorage.OrderStorageEntry{}, methodErr
	case entry := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding order %s done", settlement.OrderNumber))
		return entry, nil
	}
}

// GetOrderByNumber retrieves one order by its externally visible number.
func (s *Storage) GetOrderByNumber(ctx context.Context, userID string, orderNumber string) (modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, order_number, total_amount, status, items, created_at FROM orders WHERE user_id = $1 AND order_number = $2")
	if err != nil {
		return modelstorage.OrderStorageEntry{}, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		var queryOutput modelstorage.OrderStorageEntry
		err := selectStmt.QueryRowContext(ctx, userID, orderNumber).
			Scan(&queryOutput.ID, &queryOutput.UserID, &queryOutput.OrderNumber, &queryOutput.TotalAmount, &queryOutput.Status, &queryOutput.Items, &queryOutput.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				chanEr <- &storageErrors.NotFoundError{Err: err}
				return
			default:
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting order failed")
		return modelstorage.OrderStorageEntry{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		return modelstorage.OrderStorageEntry{}, methodErr
	case entry := <-chanOk:
		return entry, nil
	}
}

// GetOrders retrieves the most recent orders of one user.
func (s *Storage) GetOrders(ctx context.Context, userID string, limit int) ([]modelstorage.OrderStorageEntry, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT id, user_id, order_number, total_amount, status, items, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelstorage.OrderStorageEntry)
	chanEr := make(chan error)
	go func() {
		rows, err := selectStmt.QueryContext(ctx, userID, limit)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.OrderStorageEntry
		for rows.Next() {
			var queryOutputRow modelstorage.OrderStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.UserID, &queryOutputRow.OrderNumber, &queryOutputRow.TotalAmount, &queryOutputRow.Status, &queryOutputRow.Items, &queryOutputRow.CreatedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting orders failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting orders failed")
		return nil, methodErr
	case entries := <-chanOk:
		return entries, nil
	}
}

// GetRecentTransactions retrieves the most recent transactions of one user, optionally
// filtered by kind. Malformed rows are tolerated via nullable scanning so that one bad
// record never fails the whole read.
func (s *Storage) GetRecentTransactions(ctx context.Context, userID string, kinds []string, limit int) ([]modelstorage.TransactionStorageEntry, error) {
	query := "SELECT id, user_id, kind, amount, description, status, order_id, items, created_at FROM transactions WHERE user_id = $1"
	if len(kinds) > 0 {
		// kinds are internal constants, never caller input
		query += " AND kind IN ('" + strings.Join(kinds, "', '") + "')"
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT $2"
	return s.queryTransactions(ctx, query, userID, limit)
}

// GetAuditTransactions retrieves the most recent transactions across all users.
func (s *Storage) GetAuditTransactions(ctx context.Context, limit int) ([]modelstorage.TransactionStorageEntry, error) {
	query := "SELECT id, user_id, kind, amount, description, status, order_id, items, created_at FROM transactions ORDER BY created_at DESC, id DESC LIMIT $1"
	return s.queryTransactions(ctx, query, nil, limit)
}

func (s *Storage) queryTransactions(ctx context.Context, query string, userID interface{}, limit int) ([]modelstorage.TransactionStorageEntry, error) {
	args := []interface{}{limit}
	if userID != nil {
		args = []interface{}{userID, limit}
	}
	chanOk := make(chan []modelstorage.TransactionStorageEntry)
	chanEr := make(chan error)
	go func() {
		rows, err := s.DB.QueryContext(ctx, query, args...)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelstorage.TransactionStorageEntry
		for rows.Next() {
			var (
				queryOutputRow modelstorage.TransactionStorageEntry
				kind           sql.NullString
				amount         decimal.NullDecimal
				description    sql.NullString
				status         sql.NullString
				orderID        sql.NullInt64
				items          []byte
			)
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.UserID, &kind, &amount, &description, &status, &orderID, &items, &queryOutputRow.CreatedAt)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutputRow.Kind = kind.String
			queryOutputRow.Amount = amount.Decimal
			queryOutputRow.Description = description.String
			queryOutputRow.Status = status.String
			queryOutputRow.OrderID = orderID.Int64
			queryOutputRow.Items = items
			queryOutput = append(queryOutput, queryOutputRow)
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("getting transactions failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("getting transactions failed")
		return nil, methodErr
	case entries := <-chanOk:
		return entries, nil
	}
}

func (s *Storage) createTables(ctx context.Context) error {
	var queries []string
	query := `CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL   PRIMARY KEY,
		user_id       TEXT        NOT NULL UNIQUE,
		email         TEXT        NOT NULL UNIQUE,
		password      TEXT        NOT NULL,
		role          TEXT        NOT NULL DEFAULT 'user',
		registered_at TIMESTAMPTZ NOT NULL
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS deposit_accounts (
		id             BIGSERIAL      PRIMARY KEY,
		user_id        TEXT           NOT NULL UNIQUE,
		balance        NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		total_deposits NUMERIC(12, 2) NOT NULL DEFAULT 0,
		total_spent    NUMERIC(12, 2) NOT NULL DEFAULT 0,
		updated_at     TIMESTAMPTZ    NOT NULL DEFAULT now()
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS orders (
		id           BIGSERIAL      PRIMARY KEY,
		user_id      TEXT           NOT NULL,
		order_number TEXT           NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL,
		status       TEXT           NOT NULL,
		items        JSONB          NOT NULL DEFAULT '[]',
		created_at   TIMESTAMPTZ    NOT NULL DEFAULT now(),
		UNIQUE (user_id, order_number)
	);`
	queries = append(queries, query)
	query = `CREATE TABLE IF NOT EXISTS transactions (
		id          BIGSERIAL      PRIMARY KEY,
		user_id     TEXT           NOT NULL,
		kind        TEXT           NOT NULL,
		amount      NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
		description TEXT           NOT NULL DEFAULT '',
		status      TEXT           NOT NULL DEFAULT 'completed',
		order_id    BIGINT,
		items       JSONB          NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ    NOT NULL DEFAULT now()
	);`
	queries = append(queries, query)
	for _, subquery := range queries {
		_, err := s.DB.ExecContext(ctx, subquery)
		if err != nil {
			return err
		}
	}
	return nil
}
