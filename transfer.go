package cryptotax

import "go.uber.org/zap"

// router moves lots between sources for internal transfers.
type router struct {
	cfg     Config
	lots    *LotLedger
	matcher *matcher
	logger  *zap.Logger
}

// transfer moves the principal of tx to its destination. A transfer is not a
// disposal, only its fee is.
func (r *router) transfer(tx Transaction) {
	principal := tx.Amount
	if tx.Fee.IsPositive() && !tx.feeIsFiat() {
		r.matcher.fee(tx, KindTransferFee)
	}
	if tx.Destination == "" || tx.Destination == tx.Source {
		r.logger.Debug("transfer without a different destination leaves lots in place", zap.String("tx", tx.ID))
		return
	}
	moved := r.lots.Move(tx.Coin, tx.Source, tx.Destination, principal, r.cfg.Method)
	if moved.LessThan(principal) {
		r.logger.Warn("transfer exceeds source balance, moved what was available",
			zap.String("tx", tx.ID),
			zap.String("coin", tx.Coin),
			zap.String("source", tx.Source),
			zap.String("destination", tx.Destination),
			zap.Stringer("requested", principal),
			zap.Stringer("moved", moved))
	}
}
