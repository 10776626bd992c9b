package batch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cassa/internal/services"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func readAll(t *testing.T, src *CSVSource) []services.Row {
	t.Helper()
	var rows []services.Row
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestCSVSourceSkipsHeaderAndTrims(t *testing.T) {
	path := writeCSV(t, "title, type, value, category\n"+
		"Salary, income, 5000, Job\n"+
		"Rent, outcome, 1200.50, Housing\n")

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Release()

	rows := readAll(t, src)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := services.Row{Title: "Salary", Type: "income", Value: "5000", Category: "Job"}
	if rows[0] != want {
		t.Fatalf("expected %+v, got %+v", want, rows[0])
	}
	if rows[1].Value != "1200.50" {
		t.Fatalf("expected trimmed value, got %q", rows[1].Value)
	}
}

func TestCSVSourcePadsShortRecords(t *testing.T) {
	path := writeCSV(t, "title,type,value,category\n"+
		"Incomplete,income\n")

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Release()

	rows := readAll(t, src)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value != "" || rows[0].Category != "" {
		t.Fatalf("expected empty trailing cells, got %+v", rows[0])
	}
}

func TestCSVSourceHeaderOnly(t *testing.T) {
	path := writeCSV(t, "title,type,value,category\n")

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Release()

	if rows := readAll(t, src); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestCSVSourceReleaseDeletesFile(t *testing.T) {
	path := writeCSV(t, "title,type,value,category\nPizza,outcome,25.50,Food\n")

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := src.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
}

func TestOpenCSVMissingFile(t *testing.T) {
	if _, err := OpenCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
