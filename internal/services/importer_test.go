package services

import (
	"context"
	"errors"
	"testing"

	"cassa/internal/core"
)

func TestBatchImporterScenario(t *testing.T) {
	store := newFakeStore()
	importer := NewBatchImporter(store, nil)

	src := &fakeSource{rows: []Row{
		{Title: "Pizza", Type: "outcome", Value: "25.50", Category: "Food"},
		{Title: "", Type: "outcome", Value: "10.00", Category: "Food"}, // blank title, dropped
		{Title: "Groceries", Type: "outcome", Value: "80,00", Category: "Food"},
	}}

	created, err := importer.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(created))
	}
	if store.categoryCount() != 1 {
		t.Fatalf("expected 1 category for shared label, got %d", store.categoryCount())
	}
	if src.released != 1 {
		t.Fatalf("expected source released exactly once, got %d", src.released)
	}
	for _, tx := range created {
		if tx.Category.Title != "Food" {
			t.Fatalf("expected Food category attached, got %+v", tx.Category)
		}
	}
	if created[0].Value.Cents != 2550 || created[1].Value.Cents != 8000 {
		t.Fatalf("unexpected parsed values: %d, %d", created[0].Value.Cents, created[1].Value.Cents)
	}
}

func TestBatchImporterSkipsMalformedRows(t *testing.T) {
	store := newFakeStore()
	importer := NewBatchImporter(store, nil)

	src := &fakeSource{rows: []Row{
		{Title: "ok", Type: "income", Value: "1.00", Category: "Job"},
		{Title: "no value", Type: "income", Value: "", Category: "Job"},
		{Title: "bad value", Type: "income", Value: "abc", Category: "Job"},
		{Title: "bad type", Type: "transfer", Value: "1.00", Category: "Job"},
		{Title: "no category", Type: "income", Value: "1.00", Category: "  "},
	}}

	created, err := importer.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected only the well-formed row, got %d", len(created))
	}
}

func TestBatchImporterResolvesCategoriesInOneCall(t *testing.T) {
	store := newFakeStore()
	importer := NewBatchImporter(store, nil)

	src := &fakeSource{rows: []Row{
		{Title: "a", Type: "income", Value: "1", Category: "Food"},
		{Title: "b", Type: "income", Value: "1", Category: "Travel"},
		{Title: "c", Type: "income", Value: "1", Category: "Food"},
	}}

	if _, err := importer.Import(context.Background(), src); err != nil {
		t.Fatalf("import: %v", err)
	}
	if store.createCategoryCalls != 1 {
		t.Fatalf("expected a single bulk category create, got %d", store.createCategoryCalls)
	}
	if store.categoryCount() != 2 {
		t.Fatalf("expected 2 categories, got %d", store.categoryCount())
	}
}

func TestBatchImporterDoesNotCheckBalance(t *testing.T) {
	// Batch rows are a trusted load: an outcome bigger than the ledger
	// total still imports.
	store := newFakeStore()
	importer := NewBatchImporter(store, nil)

	src := &fakeSource{rows: []Row{
		{Title: "Big spend", Type: "outcome", Value: "9999.99", Category: "Misc"},
	}}

	created, err := importer.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(created))
	}
}

func TestBatchImporterEmptySource(t *testing.T) {
	src := &fakeSource{}
	created, err := NewBatchImporter(newFakeStore(), nil).Import(context.Background(), src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no transactions, got %d", len(created))
	}
	if src.released != 1 {
		t.Fatalf("expected release on empty source, got %d", src.released)
	}
}

func TestBatchImporterReleasesOnReadError(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{
		rows:    []Row{{Title: "a", Type: "income", Value: "1", Category: "Job"}},
		readErr: errBoom,
	}

	_, err := NewBatchImporter(store, nil).Import(context.Background(), src)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if src.released != 1 {
		t.Fatalf("expected release on read failure, got %d", src.released)
	}
	if store.transactionCount() != 0 {
		t.Fatalf("expected nothing persisted, got %d", store.transactionCount())
	}
}

func TestBatchImporterReleasesOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.createTransactionsErr = errBoom
	src := &fakeSource{rows: []Row{
		{Title: "a", Type: "income", Value: "1", Category: "Job"},
	}}

	_, err := NewBatchImporter(store, nil).Import(context.Background(), src)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if src.released != 1 {
		t.Fatalf("expected release on store failure, got %d", src.released)
	}
}

func TestBatchImporterPublishesEachTransaction(t *testing.T) {
	pub := &fakePublisher{}
	importer := NewBatchImporter(newFakeStore(), pub)

	src := &fakeSource{rows: []Row{
		{Title: "a", Type: "income", Value: "1", Category: "Job"},
		{Title: "b", Type: "income", Value: "2", Category: "Job"},
	}}

	created, err := importer.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(pub.ids) != len(created) {
		t.Fatalf("expected %d published ids, got %d", len(created), len(pub.ids))
	}
}

func TestBatchImporterAttachesCorrectValues(t *testing.T) {
	created, err := NewBatchImporter(newFakeStore(), nil).Import(context.Background(), &fakeSource{rows: []Row{
		{Title: "Salary", Type: "income", Value: "5000", Category: "Job"},
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	tx := created[0]
	if tx.Title != "Salary" || tx.Type != core.Income || tx.Value.Cents != 500000 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}
