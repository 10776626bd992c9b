package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cassa/internal/core"
)

// CreateTransactionRequest is a single user-initiated transaction.
type CreateTransactionRequest struct {
	Title    string
	Value    core.Money
	Type     core.TransactionType
	Category string
}

// TransactionService orchestrates single-transaction creation:
// resolve category, compute balance, validate, persist.
type TransactionService struct {
	store     Store
	resolver  *CategoryResolver
	balance   *BalanceCalculator
	publisher Publisher

	// mu serializes the balance read and the conditional insert so that
	// concurrent outcome creations cannot jointly overdraw the ledger.
	mu sync.Mutex
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		resolver:  NewCategoryResolver(store),
		balance:   NewBalanceCalculator(store),
		publisher: publisher,
	}
}

// Create persists a single transaction. Outcome transactions are rejected
// with core.ErrInsufficientFunds when their value exceeds the current total;
// on rejection no transaction is persisted. The category may already have
// been created at that point and is deliberately not rolled back.
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (core.Transaction, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)

	if req.Category == "" {
		return core.Transaction{}, core.ErrEmptyCategory
	}
	draft := core.TransactionDraft{
		Title: req.Title,
		Value: req.Value,
		Type:  req.Type,
	}
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	resolved, err := s.resolver.Resolve(ctx, []string{req.Category})
	if err != nil {
		return core.Transaction{}, err
	}
	category := resolved[req.Category]
	draft.CategoryID = category.ID

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Type == core.Outcome {
		balance, err := s.balance.Compute(ctx)
		if err != nil {
			return core.Transaction{}, err
		}
		if err := ValidateOutcome(req.Value, balance); err != nil {
			return core.Transaction{}, err
		}
	}

	transaction, err := s.store.CreateTransaction(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("persist transaction: %w", err)
	}
	transaction.Category = category

	slog.InfoContext(ctx, "Transaction recorded",
		"id", transaction.ID,
		"type", transaction.Type,
		"value_cents", transaction.Value.Cents,
		"category", category.Title)

	s.notify(ctx, transaction.ID)

	return transaction, nil
}

// List returns all transactions together with the balance derived from the
// same scan, so the two cannot disagree.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, core.Balance, error) {
	transactions, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.Balance{}, fmt.Errorf("list transactions: %w", err)
	}

	var balance core.Balance
	for _, t := range transactions {
		balance = balance.Add(t)
	}
	return transactions, balance, nil
}

// Balance recomputes the current balance from the full transaction set.
func (s *TransactionService) Balance(ctx context.Context) (core.Balance, error) {
	return s.balance.Compute(ctx)
}

func (s *TransactionService) notify(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, id); err != nil {
		// The transaction is already persisted; the mirror worker sweeps
		// for missed messages, so publish failures are not fatal.
		slog.ErrorContext(ctx, "Failed to publish transaction recorded message",
			"id", id, "error", err)
	}
}
