package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Category is a named grouping label attached to each transaction.
	Category struct {
		ID        int64
		Title     string
		CreatedAt time.Time
	}

	// Transaction is a single ledger movement. The resolved category is
	// embedded; the bare foreign key never leaves the storage layer.
	Transaction struct {
		ID        int64
		Title     string
		Value     Money
		Type      TransactionType
		Category  Category
		CreatedAt time.Time
	}

	// TransactionDraft is the storage-bound shape of a transaction before
	// it has been assigned an ID.
	TransactionDraft struct {
		Title      string
		Value      Money
		Type       TransactionType
		CategoryID int64
	}

	// Balance is derived from the full transaction set at read time.
	// It is never persisted.
	Balance struct {
		Income  Money
		Outcome Money
		Total   Money
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyTitle        = errors.New("empty title")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Outcome:
		return nil
	}
	return ErrInvalidType
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d TransactionDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if len(d.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := d.Value.Validate(); err != nil {
		return err
	}
	return d.Type.Validate()
}

// Add folds a transaction into the balance per its type.
func (b Balance) Add(t Transaction) Balance {
	switch t.Type {
	case Income:
		b.Income.Cents += t.Value.Cents
		b.Total.Cents += t.Value.Cents
	case Outcome:
		b.Outcome.Cents += t.Value.Cents
		b.Total.Cents -= t.Value.Cents
	}
	return b
}
