// Package store keeps transactions in a SQLite database.
//
// Decimals are stored as text so that no digit is lost, and dates as fixed
// width UTC strings so that their text order is chronological. Numbers that
// could not be parsed on import are kept as a JSON object in their raw form.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	"github.com/etnz/cryptotax"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

const dateLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a TransactionSource backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, ":memory:" for a private in-memory
// database, and migrates its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives in its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA timezone = 'UTC'"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set timezone: %w", err)
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		db.Close()
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Append inserts txs in a single transaction.
func (s *Store) Append(ctx context.Context, txs ...cryptotax.Transaction) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, date, action, source, destination, coin, amount, price_usd, fee, fee_coin, fee_price_usd, batch_id, unparsed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		var unparsed string
		if len(tx.Unparsed) > 0 {
			b, err := json.Marshal(tx.Unparsed)
			if err != nil {
				return fmt.Errorf("failed to encode transaction %q: %w", tx.ID, err)
			}
			unparsed = string(b)
		}
		_, err := stmt.ExecContext(ctx,
			tx.ID,
			tx.Date.UTC().Format(dateLayout),
			string(tx.Action),
			tx.Source,
			tx.Destination,
			tx.Coin,
			tx.Amount.Decimal().String(),
			tx.PriceUSD.Decimal().String(),
			tx.Fee.Decimal().String(),
			tx.FeeCoin,
			tx.FeePriceUSD.Decimal().String(),
			tx.BatchID,
			unparsed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %q: %w", tx.ID, err)
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// Transactions returns every stored transaction in chronological order,
// same-instant transactions in insertion order.
func (s *Store) Transactions(ctx context.Context) ([]cryptotax.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, action, source, destination, coin, amount, price_usd, fee, fee_coin, fee_price_usd, batch_id, unparsed
		FROM transactions
		ORDER BY date, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []cryptotax.Transaction
	for rows.Next() {
		var (
			tx                           cryptotax.Transaction
			date, action, unparsed       string
			amount, price, fee, feePrice string
		)
		if err := rows.Scan(&tx.ID, &date, &action, &tx.Source, &tx.Destination, &tx.Coin,
			&amount, &price, &fee, &tx.FeeCoin, &feePrice, &tx.BatchID, &unparsed); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("transaction %q: invalid date %q: %w", tx.ID, date, err)
		}
		tx.Action = cryptotax.Action(action)

		var d [4]decimal.Decimal
		for i, raw := range []string{amount, price, fee, feePrice} {
			if d[i], err = decimal.NewFromString(raw); err != nil {
				return nil, fmt.Errorf("transaction %q: invalid number %q: %w", tx.ID, raw, err)
			}
		}
		tx.Amount = cryptotax.Q(d[0])
		tx.PriceUSD = cryptotax.USD(d[1])
		tx.Fee = cryptotax.Q(d[2])
		tx.FeePriceUSD = cryptotax.USD(d[3])
		if unparsed != "" {
			if err := json.Unmarshal([]byte(unparsed), &tx.Unparsed); err != nil {
				return nil, fmt.Errorf("transaction %q: invalid unparsed fields: %w", tx.ID, err)
			}
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

var _ cryptotax.TransactionSource = (*Store)(nil)
