package cryptotax

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/cryptotax/date"
	"go.uber.org/zap"
)

// Engine computes tax years from the full transaction history supplied by a
// TransactionSource.
//
// An Engine holds no state between runs: every Run rebuilds the lot ledger
// from the first transaction, so runs are independent and may execute
// concurrently.
type Engine struct {
	cfg    Config
	src    TransactionSource
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report skipped transactions, transfer
// shortfalls and wash sales. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. It returns an error wrapping
// ErrInvalidConfiguration when cfg is unusable.
func NewEngine(cfg Config, src TransactionSource, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, configError("no transaction source")
	}
	if cfg.DeductionLimit.Currency() == "" {
		cfg.DeductionLimit = USD(cfg.DeductionLimit.value)
	}
	e := &Engine{cfg: cfg.clone(), src: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg.clone() }

// Run computes year and nets it with the prior carryover.
func (e *Engine) Run(ctx context.Context, year int, prior Carryover) (*Report, error) {
	txs, err := e.src.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}
	r, err := e.compute(ctx, txs, year)
	if err != nil {
		return nil, err
	}
	r.Carryover = ApplyCarryover(r.Summary, prior, e.cfg.DeductionLimit)
	return r, nil
}

// run is the state of a single computation.
type run struct {
	cfg     Config
	logger  *zap.Logger
	lots    *LotLedger
	matcher *matcher
	router  *router
	income  []IncomeRecord
	skipped []Skipped
}

func (e *Engine) newRun() *run {
	lots := NewLotLedger()
	m := &matcher{cfg: e.cfg, lots: lots, logger: e.logger}
	return &run{
		cfg:     e.cfg,
		logger:  e.logger,
		lots:    lots,
		matcher: m,
		router:  &router{cfg: e.cfg, lots: lots, matcher: m, logger: e.logger},
	}
}

// compute runs year over txs without touching the carryover. txs is only
// read.
func (e *Engine) compute(ctx context.Context, txs []Transaction, year int) (*Report, error) {
	period := date.Year(year)
	// replacements bought after the year still adjust losses inside it.
	horizon := period.Extend(washWindowDays).To

	ordered := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		ordered = append(ordered, tx.normalized())
	}
	sortByDate(ordered)

	r := e.newRun()
	var yearEnd []lotMark
	marked := false
	for i, tx := range ordered {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !tx.Date.IsZero() {
			day := date.Of(tx.Date)
			if !marked && day.After(period.To) {
				yearEnd, marked = r.lots.mark(), true
			}
			if day.After(horizon) {
				break
			}
		}
		r.apply(tx)
	}
	if !marked {
		yearEnd = r.lots.mark()
	}

	var washes []WashSale
	if e.cfg.WashSale {
		washes = washPass(r.lots, r.matcher.disposals, period.To, e.logger)
	}

	report := &Report{
		Year:     year,
		Method:   e.cfg.Method,
		Holdings: holdingsOf(yearEnd),
		Skipped:  r.skipped,
	}
	for _, d := range r.matcher.disposals {
		if period.ContainsTime(d.Date) {
			report.Disposals = append(report.Disposals, *d)
		}
	}
	for _, inc := range r.income {
		if period.ContainsTime(inc.Date) {
			report.Income = append(report.Income, inc)
		}
	}
	for _, w := range washes {
		if period.ContainsTime(w.SaleDate) {
			report.WashSales = append(report.WashSales, w)
		}
	}
	report.Summary = summarize(report.Disposals, report.Income)
	report.Reconciliation = Reconcile(report.Disposals)
	return report, nil
}

// apply drives the components for a single transaction. Malformed
// transactions are skipped.
func (r *run) apply(tx Transaction) {
	if err := tx.Validate(); err != nil {
		var merr *MalformedError
		if errors.As(err, &merr) {
			r.skipped = append(r.skipped, Skipped{TxID: merr.TxID, Field: merr.Field, Reason: merr.Reason})
		}
		r.logger.Warn("skipping malformed transaction", zap.String("tx", tx.ID), zap.Error(err))
		return
	}

	switch tx.Action {
	case Buy, Trade, GiftIn:
		r.acquire(tx, tx.Amount, tx.PriceUSD, false)
	case Refund:
		r.acquire(tx, tx.Amount.Abs(), tx.PriceUSD, false)
	case Income:
		r.reward(tx)
	case Sell, Spend, Loss:
		if IsFiat(tx.Coin) {
			r.logger.Debug("ignoring fiat disposal", zap.String("tx", tx.ID))
			return
		}
		r.matcher.sell(tx)
	case Transfer:
		r.router.transfer(tx)
	case Deposit, Withdrawal:
		r.move(tx)
	}
}

// acquire opens a lot at unitPrice. A fee in USD adds to the basis, a fee
// in a coin is disposed of.
func (r *run) acquire(tx Transaction, amount Quantity, unitPrice Money, isIncome bool) {
	if IsFiat(tx.Coin) {
		r.logger.Debug("ignoring fiat acquisition", zap.String("tx", tx.ID))
		return
	}
	if tx.Fee.IsPositive() {
		if tx.feeIsFiat() {
			unitPrice = unitPrice.Add(tx.feeValue().Div(amount))
		} else {
			r.matcher.fee(tx, KindFee)
		}
	}
	r.lots.Open(tx.Coin, tx.Source, amount, unitPrice, tx.Date, isIncome, tx.ID, tx.Action)
}

// reward handles INCOME, taxable on receipt or as a zero-basis lot.
func (r *run) reward(tx Transaction) {
	if !r.cfg.StakingTaxableOnReceipt {
		r.acquire(tx, tx.Amount, USD(0), true)
		return
	}
	r.income = append(r.income, IncomeRecord{
		TxID:     tx.ID,
		Date:     tx.Date,
		Coin:     tx.Coin,
		Source:   tx.Source,
		Amount:   tx.Amount,
		ValueUSD: tx.PriceUSD.Mul(tx.Amount),
	})
	r.acquire(tx, tx.Amount, tx.PriceUSD, true)
}

// move handles DEPOSIT and WITHDRAWAL. Fiat movements are ignored. With a
// destination they are internal transfers; otherwise a deposit is an
// acquisition at fair value and a withdrawal only disposes of its fee.
func (r *run) move(tx Transaction) {
	switch {
	case IsFiat(tx.Coin):
		return
	case tx.Destination != "":
		r.router.transfer(tx)
	case tx.Action == Deposit:
		r.acquire(tx, tx.Amount, tx.PriceUSD, false)
	default:
		r.matcher.fee(tx, KindTransferFee)
		r.logger.Warn("withdrawal without destination leaves lots in place",
			zap.String("tx", tx.ID),
			zap.String("coin", tx.Coin),
			zap.String("source", tx.Source))
	}
}

// Holdings returns the open positions at the end of year.
func (e *Engine) Holdings(ctx context.Context, year int) ([]Holding, error) {
	r, err := e.Run(ctx, year, Carryover{})
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.Holdings), nil
}
