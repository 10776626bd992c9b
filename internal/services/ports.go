// Package services implements the ledger consistency subsystem: category
// resolution, balance aggregation, the insufficient-funds check and the
// orchestration of single and bulk transaction creation.
package services

import (
	"context"

	"cassa/internal/core"
)

// Ports for outbound collaborators.
type (
	// Store is the persistent store consumed by the ledger services.
	Store interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		// CreateCategories bulk-inserts one category per title and returns
		// the persisted entities with assigned identifiers.
		CreateCategories(ctx context.Context, titles []string) ([]core.Category, error)
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
		CreateTransactions(ctx context.Context, drafts []core.TransactionDraft) ([]core.Transaction, error)
	}

	// RowSource supplies tokenized batch rows in order. Next returns io.EOF
	// once the source is exhausted; the sequence is finite and not
	// restartable. Release frees the underlying resource and must be called
	// exactly once per import attempt, whatever the outcome.
	RowSource interface {
		Next() (Row, error)
		Release() error
	}

	// Publisher emits a notification after a transaction has been persisted.
	Publisher interface {
		PublishTransactionRecorded(ctx context.Context, id int64) error
	}
)

// Row is a raw batch record before any parsing.
type Row struct {
	Title    string
	Type     string
	Value    string
	Category string
}
