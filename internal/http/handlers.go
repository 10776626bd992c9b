package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"cassa/internal/batch"
	"cassa/internal/core"
	"cassa/internal/services"
)

// Multipart uploads are capped well above any realistic batch file.
const maxUploadBytes = 10 << 20 // 10MB

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string      `json:"title"`
		Value    json.Number `json:"value"`
		Type     string      `json:"type"`
		Category string      `json:"category"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Value.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid value")
		return
	}

	created, err := s.transactions.Create(r.Context(), services.CreateTransactionRequest{
		Title:    req.Title,
		Value:    core.Money{Cents: cents},
		Type:     core.TransactionType(req.Type),
		Category: req.Category,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionJSON(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, balance, err := s.transactions.List(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	out := struct {
		Transactions []transactionJSON `json:"transactions"`
		Balance      balanceJSON       `json:"balance"`
	}{
		Transactions: make([]transactionJSON, len(transactions)),
		Balance:      toBalanceJSON(balance),
	}
	for i, t := range transactions {
		out.Transactions[i] = toTransactionJSON(t)
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	balance, err := s.transactions.Balance(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceJSON(balance))
}

// handleImport accepts a multipart CSV upload, spools it to the upload
// directory and hands it to the batch importer. The spooled file is deleted
// by the source's Release, whatever the import outcome.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	path, err := s.spoolUpload(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to spool upload", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	src, err := batch.OpenCSV(path)
	if err != nil {
		os.Remove(path)
		slog.ErrorContext(r.Context(), "Failed to open batch file", "error", err)
		writeError(w, http.StatusInternalServerError, "could not read upload")
		return
	}

	created, err := s.importer.Import(r.Context(), src)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	out := struct {
		Imported     int               `json:"imported"`
		Transactions []transactionJSON `json:"transactions"`
	}{
		Imported:     len(created),
		Transactions: make([]transactionJSON, len(created)),
	}
	for i, t := range created {
		out.Transactions[i] = toTransactionJSON(t)
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) spoolUpload(file io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+".csv")
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
