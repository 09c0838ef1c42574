// Package reconciler provides retry functionality for settlements orphaned by a committed debit.

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stampmart/stampmart/internal/api/rest/client"
	"github.com/stampmart/stampmart/internal/models/modeldto"
	"github.com/stampmart/stampmart/internal/models/modelqueue"
	"github.com/stampmart/stampmart/internal/storage/v1"
	storageErrors "github.com/stampmart/stampmart/internal/storage/v1/errors"
)

const (
	retryDelay     = 5 * time.Second
	attemptTimeout = 5 * time.Second
)

type Reconciler struct {
	ctx     context.Context
	log     *zerolog.Logger
	queue   chan modelqueue.SettlementQueueEntry
	storage storage.Ledger
	alert   *client.Client
	wg      *sync.WaitGroup
	workers int
	retries int
}

type settlementWorker struct {
	ID         int
	ctx        context.Context
	log        *zerolog.Logger
	queue      chan modelqueue.SettlementQueueEntry
	storage    storage.Ledger
	alert      *client.Client
	maxRetries int
}

// InitReconciler initializes a reconciler over a settlement queue.
func InitReconciler(ctx context.Context, queue chan modelqueue.SettlementQueueEntry, st storage.Ledger, alert *client.Client, log *zerolog.Logger, wg *sync.WaitGroup, workerNumber int, retryNumber int) *Reconciler {
	reconciler := Reconciler{
		ctx:     ctx,
		log:     log,
		queue:   queue,
		storage: st,
		alert:   alert,
		wg:      wg,
		workers: workerNumber,
		retries: retryNumber,
	}
	return &reconciler
}

// ListenAndProcess spawns settlement workers and closes the queue upon context cancellation.
func (r *Reconciler) ListenAndProcess() {
	r.wg.Add(1)
	go func() {
		r.log.Info().Msg("started listening to queue for orphaned settlements")
		defer r.wg.Done()
		g, _ := errgroup.WithContext(r.ctx)
		for i := 0; i < r.workers; i++ {
			w := &settlementWorker{ID: i, ctx: r.ctx, log: r.log, queue: r.queue, storage: r.storage, alert: r.alert, maxRetries: r.retries}
			g.Go(w.processAsync)
		}
		<-r.ctx.Done()
		close(r.queue)
		r.log.Info().Msg("closed queue for orphaned settlements")
		err := g.Wait()
		if err != nil {
			r.log.Error().Err(err).Msg("closing errgroup failed")
		}
		r.log.Info().Msg("stopped listening to queue for orphaned settlements")
	}()
}

func (w *settlementWorker) processAsync() error {
	for entry := range w.queue {
		if wait := time.Until(entry.LastAttempt.Add(retryDelay)); wait > 0 {
			select {
			case <-time.After(wait):
			case <-w.ctx.Done():
				// drain the remaining entries without delay during shutdown
			}
		}

		// the debit has already committed, so the write must be attempted even when
		// the service context is gone
		ctxTO, cancelTO := context.WithTimeout(context.Background(), attemptTimeout)
		_, err := w.storage.AddSettlement(ctxTO, entry)
		cancelTO()
		if err == nil {
			w.log.Info().Msg(fmt.Sprintf("WID %v, order %v — settlement reconciled after %v retries", w.ID, entry.OrderNumber, entry.RetryCount))
			continue
		}
		var alreadyExistsError *storageErrors.AlreadyExistsError
		if errors.As(err, &alreadyExistsError) {
			w.log.Info().Msg(fmt.Sprintf("WID %v, order %v — settlement already landed, dropping", w.ID, entry.OrderNumber))
			continue
		}

		entry.RetryCount += 1
		entry.LastAttempt = time.Now()
		if entry.RetryCount >= w.maxRetries {
			w.log.Error().Err(err).Str("user_id", entry.UserID).Str("order_number", entry.OrderNumber).Str("amount", entry.Amount.String()).Msg("settlement abandonment due to retry limit exceeding")
			w.report(entry, err)
			continue
		}
		select {
		case <-w.ctx.Done():
			// the queue is closing, no requeueing is possible
			w.log.Error().Err(err).Str("user_id", entry.UserID).Str("order_number", entry.OrderNumber).Str("amount", entry.Amount.String()).Msg("settlement abandonment due to shutdown")
			w.report(entry, err)
		default:
			w.log.Warn().Msg(fmt.Sprintf("WID %v, order %v — could not reconcile, sending back to queue", w.ID, entry.OrderNumber))
			select {
			case w.queue <- entry:
			default:
				w.log.Error().Str("order_number", entry.OrderNumber).Msg("settlement reconciliation queue is full, entry dropped")
				w.report(entry, err)
			}
		}
	}
	return nil
}

func (w *settlementWorker) report(entry modelqueue.SettlementQueueEntry, cause error) {
	ctxTO, cancelTO := context.WithTimeout(context.Background(), attemptTimeout)
	defer cancelTO()
	w.alert.ReportIncident(ctxTO, modeldto.SettlementIncident{
		UserID:      entry.UserID,
		OrderNumber: entry.OrderNumber,
		Amount:      entry.Amount,
		Description: entry.Description,
		Attempts:    entry.RetryCount,
		Error:       cause.Error(),
	})
}
