// Package pocket provides the types and rules of a personal finance book:
// income and expense transactions, notes, portfolio entries and loans. It is
// designed to be local-first, every record lives in a local store and is
// mirrored on a best-effort basis to a remote backup.
//
// The core functionalities include:
//   - Month-Edit Policy: records can only be created or deleted while their
//     date falls in the current calendar month, see [IsEditable].
//   - Month Closing: at startup the transactions of the previous month are
//     folded into a [MonthlySnapshot] and purged, see [Book.ClosePreviousMonth].
//   - Portfolio Positions: buys and sells are reduced into positions with an
//     average cost, see [Positions].
//   - Loan Accrual: simple daily interest on loans net of payments, see [Accrue].
//   - Backup: JSON export/import and replication intents for the remote mirror.
//
// The current time is always provided by a [Clock], so that month boundaries
// can be simulated.
//
// This package serves as the foundational logic for the `pkt` command-line
// tool and its HTTP API.
package pocket
