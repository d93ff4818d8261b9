package models

import "errors"

var (
	ErrBorrowerNotFound = errors.New("borrower not found")
	ErrProviderNotFound = errors.New("loan provider not found")
	ErrProductNotFound  = errors.New("loan product not found")
	ErrLoanNotFound     = errors.New("loan not found")

	// ErrLedgerAccountMissing means the provider's chart of accounts has no
	// account for a (type, category) pair a posting needs. The whole posting
	// is aborted.
	ErrLedgerAccountMissing = errors.New("ledger account not configured for provider")
	ErrUnbalancedJournal    = errors.New("journal entry debits and credits do not balance")
	ErrNegativeEntryAmount  = errors.New("ledger entry amount must not be negative")

	// ErrOverpayment is raised when an incoming payment exceeds the remaining
	// balance beyond tolerance. The caller acknowledges it, it is never
	// propagated to the gateway as a failure.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")

	ErrNoScoringParameters       = errors.New("no scoring parameters configured for provider")
	ErrBorrowerNonPerforming     = errors.New("borrower is flagged non-performing")
	ErrUnpaidLoanOnProduct       = errors.New("borrower has an unpaid loan on this product")
	ErrConcurrentLoanNotAllowed  = errors.New("product does not allow concurrent loans")
	ErrEligibilityFilterMismatch = errors.New("borrower attributes do not match product eligibility filter")
	ErrAmountExceedsAccessible   = errors.New("requested amount exceeds accessible loan amount")
	ErrInsufficientCapital       = errors.New("provider capital pool cannot cover disbursement")
)
