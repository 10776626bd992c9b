package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cassa/internal/core"
)

// BatchImporter bulk-creates transactions from a row source. Batch rows are
// a trusted load: they are never checked against the running balance, unlike
// user-initiated single creations.
type BatchImporter struct {
	store     Store
	resolver  *CategoryResolver
	publisher Publisher
}

func NewBatchImporter(store Store, publisher Publisher) *BatchImporter {
	return &BatchImporter{
		store:     store,
		resolver:  NewCategoryResolver(store),
		publisher: publisher,
	}
}

type parsedRow struct {
	title    string
	typ      core.TransactionType
	value    core.Money
	category string
}

// Import reads every row from the source, resolves all category labels in a
// single call and persists the surviving rows in one bulk create. Rows with
// a blank field or an unparseable value or type are silently skipped. The
// source is released exactly once, on every exit path.
func (i *BatchImporter) Import(ctx context.Context, src RowSource) ([]core.Transaction, error) {
	defer func() {
		if err := src.Release(); err != nil {
			slog.WarnContext(ctx, "Failed to release batch source", "error", err)
		}
	}()

	rows, err := i.readRows(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		slog.InfoContext(ctx, "Batch import produced no usable rows")
		return nil, nil
	}

	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.category)
	}
	resolved, err := i.resolver.Resolve(ctx, labels)
	if err != nil {
		return nil, err
	}

	drafts := make([]core.TransactionDraft, len(rows))
	for idx, r := range rows {
		drafts[idx] = core.TransactionDraft{
			Title:      r.title,
			Value:      r.value,
			Type:       r.typ,
			CategoryID: resolved[r.category].ID,
		}
	}

	created, err := i.store.CreateTransactions(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}
	for idx := range created {
		created[idx].Category = resolved[rows[idx].category]
	}

	slog.InfoContext(ctx, "Batch import completed",
		"imported", len(created),
		"categories", len(resolved))

	for _, t := range created {
		i.notify(ctx, t.ID)
	}

	return created, nil
}

func (i *BatchImporter) readRows(ctx context.Context, src RowSource) ([]parsedRow, error) {
	var rows []parsedRow
	skipped := 0
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read batch source: %w", err)
		}

		title := strings.TrimSpace(row.Title)
		rawType := strings.TrimSpace(row.Type)
		rawValue := strings.TrimSpace(row.Value)
		category := strings.TrimSpace(row.Category)
		if title == "" || rawType == "" || rawValue == "" || category == "" {
			skipped++
			continue
		}

		typ := core.TransactionType(rawType)
		if typ.Validate() != nil {
			skipped++
			continue
		}
		cents, err := core.ParseDecimalToCents(rawValue)
		if err != nil {
			skipped++
			continue
		}

		rows = append(rows, parsedRow{
			title:    title,
			typ:      typ,
			value:    core.Money{Cents: cents},
			category: category,
		})
	}

	if skipped > 0 {
		slog.DebugContext(ctx, "Skipped malformed batch rows", "skipped", skipped)
	}
	return rows, nil
}

func (i *BatchImporter) notify(ctx context.Context, id int64) {
	if i.publisher == nil {
		return
	}
	if err := i.publisher.PublishTransactionRecorded(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction recorded message",
			"id", id, "error", err)
	}
}
