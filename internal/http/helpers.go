package http

import (
	"encoding/json"
	"net/http"
	"time"

	"cassa/internal/core"
)

type categoryJSON struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type transactionJSON struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Value     float64      `json:"value"`
	Type      string       `json:"type"`
	Category  categoryJSON `json:"category"`
	CreatedAt time.Time    `json:"created_at"`
}

type balanceJSON struct {
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
	Total   float64 `json:"total"`
}

// JSON values are for display; all arithmetic happens on cents.
func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:    t.ID,
		Title: t.Title,
		Value: t.Value.Units(),
		Type:  string(t.Type),
		Category: categoryJSON{
			ID:    t.Category.ID,
			Title: t.Category.Title,
		},
		CreatedAt: t.CreatedAt,
	}
}

func toBalanceJSON(b core.Balance) balanceJSON {
	return balanceJSON{
		Income:  b.Income.Units(),
		Outcome: b.Outcome.Units(),
		Total:   b.Total.Units(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
