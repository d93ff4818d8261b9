package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RepaymentStatus defines the repayment state of a loan
type RepaymentStatus string

const (
	RepaymentStatusUnpaid RepaymentStatus = "UNPAID"
	// RepaymentStatusPaid is terminal; there is no transition back.
	RepaymentStatusPaid RepaymentStatus = "PAID"
)

// RepaymentBehavior records how the loan was closed relative to its due date.
// Set exactly once, at full repayment.
type RepaymentBehavior string

const (
	RepaymentBehaviorEarly  RepaymentBehavior = "EARLY"
	RepaymentBehaviorOnTime RepaymentBehavior = "ON_TIME"
	RepaymentBehaviorLate   RepaymentBehavior = "LATE"
)

// Loan is a disbursed loan. ServiceFee is computed at disbursement and frozen;
// later product configuration changes never alter existing loans.
type Loan struct {
	ID                int                `json:"id" db:"id"`
	BorrowerID        int                `json:"borrower_id" db:"borrower_id"`
	ProductID         int                `json:"product_id" db:"product_id"`
	LoanAmount        decimal.Decimal    `json:"loan_amount" db:"loan_amount"`
	ServiceFee        decimal.Decimal    `json:"service_fee" db:"service_fee"`
	DisbursedDate     time.Time          `json:"disbursed_date" db:"disbursed_date"`
	DueDate           time.Time          `json:"due_date" db:"due_date"`
	RepaymentStatus   RepaymentStatus    `json:"repayment_status" db:"repayment_status"`
	RepaidAmount      decimal.Decimal    `json:"repaid_amount" db:"repaid_amount"`
	PenaltyAmount     decimal.Decimal    `json:"penalty_amount" db:"penalty_amount"`
	RepaymentBehavior *RepaymentBehavior `json:"repayment_behavior,omitempty" db:"repayment_behavior"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// BehaviorFor classifies a full repayment by comparing the calendar day of
// the settlement date against the due date.
func BehaviorFor(settledAt, dueDate time.Time) RepaymentBehavior {
	sy, sm, sd := settledAt.Date()
	dy, dm, dd := dueDate.Date()
	settled := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	switch {
	case settled.Equal(due):
		return RepaymentBehaviorOnTime
	case settled.Before(due):
		return RepaymentBehaviorEarly
	default:
		return RepaymentBehaviorLate
	}
}

// DisburseRequest is the operator request to issue a loan.
type DisburseRequest struct {
	BorrowerID int             `json:"borrower_id" validate:"required,gt=0"`
	ProductID  int             `json:"product_id" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// Validate checks the parts the struct validator cannot express.
func (r *DisburseRequest) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be positive")
	}
	return nil
}
