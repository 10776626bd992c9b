package services

import (
	"context"
	"fmt"

	"cassa/internal/core"
)

// BalanceCalculator derives the ledger balance from the full transaction
// set. There is no cached or incremental balance: every call re-scans the
// store, so the result only depends on the read-time snapshot.
type BalanceCalculator struct {
	store Store
}

func NewBalanceCalculator(store Store) *BalanceCalculator {
	return &BalanceCalculator{store: store}
}

func (c *BalanceCalculator) Compute(ctx context.Context) (core.Balance, error) {
	transactions, err := c.store.ListTransactions(ctx)
	if err != nil {
		return core.Balance{}, fmt.Errorf("list transactions: %w", err)
	}

	var balance core.Balance
	for _, t := range transactions {
		balance = balance.Add(t)
	}
	return balance, nil
}
