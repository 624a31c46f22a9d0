package store

import "errors"

var (
	// ErrLedgerMissing indicates the ledger was used before EnsureSchema.
	ErrLedgerMissing = errors.New("migration ledger not initialized")

	// ErrInvalidIdentifier indicates a table or schema name is not a safe SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
