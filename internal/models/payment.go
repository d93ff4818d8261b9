package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingPaymentStatus tracks the lifecycle of an expected gateway payment.
// PROCESSED and FAILED are terminal; a callback for a terminal record is
// acknowledged and ignored.
type PendingPaymentStatus string

const (
	PendingPaymentStatusPending   PendingPaymentStatus = "PENDING"
	PendingPaymentStatusProcessed PendingPaymentStatus = "PROCESSED"
	PendingPaymentStatusFailed    PendingPaymentStatus = "FAILED"
)

// PendingPayment is the idempotency gate for gateway callbacks, keyed by the
// external transaction reference.
type PendingPayment struct {
	ID        int                  `json:"id" db:"id"`
	LoanID    int                  `json:"loan_id" db:"loan_id"`
	TxnRef    string               `json:"txn_ref" db:"txn_ref"`
	Status    PendingPaymentStatus `json:"status" db:"status"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the record may no longer be claimed.
func (p *PendingPayment) IsTerminal() bool {
	return p.Status != PendingPaymentStatusPending
}

// Payment records one applied gateway payment and the journal entry it
// produced.
type Payment struct {
	ID                              int             `json:"id" db:"id"`
	LoanID                          int             `json:"loan_id" db:"loan_id"`
	TxnRef                          string          `json:"txn_ref" db:"txn_ref"`
	Amount                          decimal.Decimal `json:"amount" db:"amount"`
	Date                            time.Time       `json:"date" db:"date"`
	OutstandingBalanceBeforePayment decimal.Decimal `json:"outstanding_balance_before_payment" db:"outstanding_balance_before_payment"`
	JournalEntryID                  int             `json:"journal_entry_id" db:"journal_entry_id"`
	CreatedAt                       time.Time       `json:"created_at" db:"created_at"`
}

// PaymentCallbackRequest is the gateway webhook payload.
type PaymentCallbackRequest struct {
	TxnRef       string          `json:"txnRef" validate:"required"`
	PaidAmount   decimal.Decimal `json:"paidAmount" validate:"required"`
	PaidByNumber string          `json:"paidByNumber"`
	AccountNo    string          `json:"accountNo"`
	PaidAt       *time.Time      `json:"paidAt"`
}

// PaymentAllocation is the per-category split of one applied payment.
type PaymentAllocation struct {
	Penalty    decimal.Decimal `json:"penalty"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	Interest   decimal.Decimal `json:"interest"`
	Principal  decimal.Decimal `json:"principal"`
	Tax        decimal.Decimal `json:"tax"`
}

// Total sums the allocation.
func (a *PaymentAllocation) Total() decimal.Decimal {
	return a.Penalty.Add(a.ServiceFee).Add(a.Interest).Add(a.Principal).Add(a.Tax)
}

// Amount returns the slice allocated to one category.
func (a *PaymentAllocation) Amount(c LedgerCategory) decimal.Decimal {
	switch c {
	case CategoryPenalty:
		return a.Penalty
	case CategoryServiceFee:
		return a.ServiceFee
	case CategoryInterest:
		return a.Interest
	case CategoryPrincipal:
		return a.Principal
	case CategoryTax:
		return a.Tax
	}
	return decimal.Zero
}
