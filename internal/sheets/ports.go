package sheets

import (
	"context"

	"cassa/internal/core"
)

// TransactionWriter mirrors persisted transactions to an external
// spreadsheet.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) error
}
