package cryptotax

import (
	"context"
	"slices"
)

// TransactionSource supplies the full transaction history of a computation.
// Implementations return a consistent snapshot; the engine never writes back.
type TransactionSource interface {
	Transactions(ctx context.Context) ([]Transaction, error)
}

// Ledger represents a list of transactions held in memory.
//
// In a Ledger transactions are always in chronological order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates a ledger holding txs.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{}
	l.Append(txs...)
	return l
}

// Append adds transactions, keeping the ledger sorted.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns a copy of the transactions in chronological order.
func (l *Ledger) Transactions(ctx context.Context) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(l.transactions), nil
}

// stableSort sorts by date, keeping the insertion order of same-instant
// transactions.
func (l *Ledger) stableSort() { sortByDate(l.transactions) }

func sortByDate(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
}

var _ TransactionSource = (*Ledger)(nil)
