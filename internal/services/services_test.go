package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"cassa/internal/core"
)

// fakeStore is an in-memory Store for exercising the ledger services.
type fakeStore struct {
	mu           sync.Mutex
	categories   []core.Category
	transactions []core.Transaction

	nextCategoryID    int64
	nextTransactionID int64

	createCategoryCalls int

	listCategoriesErr     error
	createCategoriesErr   error
	listTransactionsErr   error
	createTransactionErr  error
	createTransactionsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listCategoriesErr != nil {
		return nil, s.listCategoriesErr
	}
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *fakeStore) CreateCategories(ctx context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCategoryCalls++
	if s.createCategoriesErr != nil {
		return nil, s.createCategoriesErr
	}
	var created []core.Category
	for _, title := range titles {
		s.nextCategoryID++
		c := core.Category{ID: s.nextCategoryID, Title: title, CreatedAt: time.Now()}
		s.categories = append(s.categories, c)
		created = append(created, c)
	}
	return created, nil
}

func (s *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listTransactionsErr != nil {
		return nil, s.listTransactionsErr
	}
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *fakeStore) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createTransactionErr != nil {
		return core.Transaction{}, s.createTransactionErr
	}
	return s.insert(draft), nil
}

func (s *fakeStore) CreateTransactions(ctx context.Context, drafts []core.TransactionDraft) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createTransactionsErr != nil {
		return nil, s.createTransactionsErr
	}
	created := make([]core.Transaction, len(drafts))
	for i, d := range drafts {
		created[i] = s.insert(d)
	}
	return created, nil
}

// insert assumes s.mu is held.
func (s *fakeStore) insert(draft core.TransactionDraft) core.Transaction {
	s.nextTransactionID++
	t := core.Transaction{
		ID:        s.nextTransactionID,
		Title:     draft.Title,
		Value:     draft.Value,
		Type:      draft.Type,
		Category:  core.Category{ID: draft.CategoryID},
		CreatedAt: time.Now(),
	}
	s.transactions = append(s.transactions, t)
	return t
}

func (s *fakeStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *fakeStore) categoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories)
}

// fakePublisher records published transaction IDs.
type fakePublisher struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (p *fakePublisher) PublishTransactionRecorded(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ids = append(p.ids, id)
	return nil
}

// fakeSource replays a fixed set of rows, optionally failing afterwards.
type fakeSource struct {
	rows     []Row
	readErr  error
	released int
}

func (s *fakeSource) Next() (Row, error) {
	if len(s.rows) == 0 {
		if s.readErr != nil {
			return Row{}, s.readErr
		}
		return Row{}, io.EOF
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, nil
}

func (s *fakeSource) Release() error {
	s.released++
	return nil
}

var errBoom = errors.New("boom")
