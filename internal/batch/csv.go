// Package batch implements batch sources for bulk transaction import.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cassa/internal/services"
)

// CSVSource reads batch rows from a comma-separated file in the upload
// format (title, type, value, category). The first line is a header and is
// skipped; cells are trimmed. Release closes and deletes the file.
type CSVSource struct {
	file       *os.File
	reader     *csv.Reader
	path       string
	headerDone bool
}

var _ services.RowSource = (*CSVSource)(nil)

func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}

	r := csv.NewReader(f)
	// Malformed trailing lines are the importer's problem, not a parse
	// error: tolerate variable field counts.
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	return &CSVSource{file: f, reader: r, path: path}, nil
}

// Next returns the next data row. Data starts at line 2; io.EOF signals the
// end of the file.
func (s *CSVSource) Next() (services.Row, error) {
	for {
		record, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return services.Row{}, io.EOF
			}
			return services.Row{}, fmt.Errorf("read csv record: %w", err)
		}

		if !s.headerDone {
			s.headerDone = true
			continue
		}

		return services.Row{
			Title:    cell(record, 0),
			Type:     cell(record, 1),
			Value:    cell(record, 2),
			Category: cell(record, 3),
		}, nil
	}
}

// Release closes the source and deletes the underlying file. Callers invoke
// it exactly once per import attempt, regardless of outcome.
func (s *CSVSource) Release() error {
	closeErr := s.file.Close()
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("remove batch file: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close batch file: %w", closeErr)
	}
	return nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
