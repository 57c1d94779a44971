// Package cryptotax computes capital gains and income tax results for a
// ledger of cryptocurrency transactions.
//
// The core functionalities include:
//   - Lot Ledger: acquisition lots per coin and source, consumed FIFO or HIFO,
//     optionally isolated per broker the way custodians report basis.
//   - Disposal Matching: proceeds, cost basis and holding period of every
//     sale, spend, loss and fee, with a zero basis fallback when no lot exists.
//   - Wash Sales: losses with replacement purchases within 30 days are
//     disallowed proportionally and moved into the basis of the replacements.
//   - Transfers: moving coins between sources keeps their acquisition date
//     and basis.
//   - Carryover: net capital losses beyond the annual deduction limit are
//     carried into the following years, keeping their character.
//
// All arithmetic is decimal. Amounts are only rounded to cents when reported.
//
// An Engine reads the whole transaction history from a TransactionSource at
// every run and computes one tax year. It holds no state between runs.
// This package serves as the foundational logic for the `ctax` command-line
// tool.
package cryptotax
