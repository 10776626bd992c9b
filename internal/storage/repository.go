// Package storage implements the persistent store over SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cassa/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListCategories implements services.Store
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// CreateCategories bulk-inserts one category per title. The insert is an
// upsert keyed on the unique title index, so two racing resolvers can never
// produce duplicate categories; the loser of the race gets the winner's row
// back from the re-select.
func (r *SQLiteRepository) CreateCategories(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, title := range titles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (title, created_at) VALUES (?, ?)
			 ON CONFLICT(title) DO NOTHING`, title, now); err != nil {
			return nil, fmt.Errorf("insert category %q: %w", title, err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(titles)), ",")
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, created_at FROM categories WHERE title IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("select created categories: %w", err)
	}
	defer rows.Close()

	byTitle := make(map[string]core.Category, len(titles))
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		byTitle[c.Title] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	created := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		c, ok := byTitle[title]
		if !ok {
			return nil, fmt.Errorf("category %q missing after upsert", title)
		}
		created = append(created, c)
	}
	return created, nil
}

const transactionColumns = `
	t.id, t.title, t.value_cents, t.type, t.created_at,
	c.id, c.title, c.created_at`

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var t core.Transaction
	err := scan(
		&t.ID, &t.Title, &t.Value.Cents, &t.Type, &t.CreatedAt,
		&t.Category.ID, &t.Category.Title, &t.Category.CreatedAt)
	return t, err
}

// ListTransactions implements services.Store
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// GetTransaction retrieves a single transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ?`, id)
	t, err := scanTransaction(row.Scan)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// CreateTransaction implements services.Store
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (title, value_cents, type, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		draft.Title, draft.Value.Cents, string(draft.Type), draft.CategoryID, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	return core.Transaction{
		ID:        id,
		Title:     draft.Title,
		Value:     draft.Value,
		Type:      draft.Type,
		Category:  core.Category{ID: draft.CategoryID},
		CreatedAt: now,
	}, nil
}

// CreateTransactions bulk-inserts all drafts inside one database
// transaction: either the whole batch lands or none of it does.
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, drafts []core.TransactionDraft) ([]core.Transaction, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (title, value_cents, type, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := make([]core.Transaction, 0, len(drafts))
	for _, draft := range drafts {
		res, err := stmt.ExecContext(ctx,
			draft.Title, draft.Value.Cents, string(draft.Type), draft.CategoryID, now)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		created = append(created, core.Transaction{
			ID:        id,
			Title:     draft.Title,
			Value:     draft.Value,
			Type:      draft.Type,
			Category:  core.Category{ID: draft.CategoryID},
			CreatedAt: now,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// ListUnmirrored returns transactions not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) ListUnmirrored(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.mirrored = 0
		 ORDER BY t.id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unmirrored transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// MarkMirrored flags a transaction as mirrored to the spreadsheet.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET mirrored = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction mirrored: %w", err)
	}
	return nil
}
