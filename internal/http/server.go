// Package http exposes the ledger over a JSON API. It is glue: all
// invariants live in the services layer.
package http

import (
	"net/http"

	applog "cassa/internal/log"
	"cassa/internal/services"
)

type Server struct {
	http.Server
	transactions *services.TransactionService
	importer     *services.BatchImporter
	uploadDir    string
}

func NewServer(addr string, transactions *services.TransactionService, importer *services.BatchImporter, uploadDir string) *Server {
	s := &Server{
		transactions: transactions,
		importer:     importer,
		uploadDir:    uploadDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/transactions/import", s.handleImport)
	mux.HandleFunc("/balance", s.handleBalance)

	s.Addr = addr
	s.Handler = applog.RequestLogger(mux)

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
