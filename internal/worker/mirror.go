// Package worker mirrors persisted transactions to an external spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cassa/internal/amqp"
	"cassa/internal/core"
	"cassa/internal/sheets"
)

// TransactionSource is the subset of the storage layer the worker needs.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListUnmirrored(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkMirrored(ctx context.Context, id int64) error
}

// Consumer delivers transaction-recorded messages.
type Consumer interface {
	ConsumeTransactionRecorded(ctx context.Context, handler func(*amqp.TransactionRecordedMessage) error) error
}

// MirrorWorker consumes transaction-recorded messages and appends each
// transaction to the spreadsheet, sweeping periodically for anything the
// queue missed.
type MirrorWorker struct {
	storage       TransactionSource
	writer        sheets.TransactionWriter
	consumer      Consumer
	batchSize     int
	sweepInterval time.Duration
}

func NewMirrorWorker(storage TransactionSource, writer sheets.TransactionWriter, consumer Consumer, batchSize int, sweepInterval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		storage:       storage,
		writer:        writer,
		consumer:      consumer,
		batchSize:     batchSize,
		sweepInterval: sweepInterval,
	}
}

// Run consumes the queue and runs the periodic sweep until ctx is
// cancelled. It returns the first non-cancellation error.
func (w *MirrorWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.consumer.ConsumeTransactionRecorded(ctx, func(msg *amqp.TransactionRecordedMessage) error {
			return w.mirrorByID(ctx, msg.ID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consume messages: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.SweepPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// SweepPending mirrors up to batchSize transactions that were persisted but
// never acknowledged via the queue.
func (w *MirrorWorker) SweepPending(ctx context.Context) error {
	pending, err := w.storage.ListUnmirrored(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unmirrored: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.mirror(ctx, t); err != nil {
			// Keep going; the next sweep retries the failed ones.
			slog.ErrorContext(ctx, "Failed to mirror transaction",
				"id", t.ID, "error", err)
		}
	}
	return nil
}

func (w *MirrorWorker) mirrorByID(ctx context.Context, id int64) error {
	transaction, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	return w.mirror(ctx, transaction)
}

func (w *MirrorWorker) mirror(ctx context.Context, t core.Transaction) error {
	if err := w.writer.Append(ctx, t); err != nil {
		return fmt.Errorf("append to spreadsheet: %w", err)
	}
	if err := w.storage.MarkMirrored(ctx, t.ID); err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored", "id", t.ID)
	return nil
}
