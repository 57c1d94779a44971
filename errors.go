package cryptotax

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTransaction is wrapped by every error reported for a
	// transaction that cannot be processed. Such transactions are skipped.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrInvalidConfiguration is returned before any computation when the
	// engine configuration is unusable.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// MalformedError describes why a transaction was rejected.
type MalformedError struct {
	TxID   string
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("transaction %q: %s: %s", e.TxID, e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedTransaction }

func malformed(tx Transaction, field, format string, args ...any) error {
	return &MalformedError{TxID: tx.ID, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
