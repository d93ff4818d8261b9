package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// overpaymentTolerance absorbs rounding noise from the gateway before a
// payment is rejected as exceeding the outstanding balance.
var overpaymentTolerance = decimal.NewFromFloat(0.01)

// allocationOrder is the settlement waterfall: each category is paid in full
// (up to its remaining due) before the next sees a cent.
var allocationOrder = []models.LedgerCategory{
	models.CategoryPenalty,
	models.CategoryServiceFee,
	models.CategoryInterest,
	models.CategoryPrincipal,
	models.CategoryTax,
}

// PaymentSvc is an implementation of the service.PaymentService interface
type PaymentSvc struct {
	repos   *repository.Repository
	logger  *logrus.Logger
	accrual AccrualService
	ledger  LedgerService
}

// NewPaymentService creates a new PaymentSvc
func NewPaymentService(deps Dependencies, accrual AccrualService, ledger LedgerService) *PaymentSvc {
	return &PaymentSvc{
		repos:   deps.Repos,
		logger:  deps.Logger,
		accrual: accrual,
		ledger:  ledger,
	}
}

// Initiate registers an expected gateway payment for a loan and returns the
// pending record whose reference the gateway will echo back.
func (s *PaymentSvc) Initiate(ctx context.Context, loanID int) (*models.PendingPayment, error) {
	loan, err := s.repos.Loan.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.RepaymentStatus == models.RepaymentStatusPaid {
		return nil, fmt.Errorf("loan %d is already settled", loanID)
	}

	pending := &models.PendingPayment{
		LoanID: loan.ID,
		TxnRef: uuid.NewString(),
		Status: models.PendingPaymentStatusPending,
	}

	id, err := s.repos.Payment.CreatePending(ctx, pending)
	if err != nil {
		return nil, err
	}
	pending.ID = id

	s.logger.Infof("Initiated payment %s for loan %d", pending.TxnRef, loan.ID)

	return pending, nil
}

// ProcessCallback applies one gateway payment to its loan. Unknown and
// already-terminal references are acknowledged without any mutation so the
// gateway never retries. A live reference is claimed inside the transaction
// and the loan row is locked before any allocation figure is read, so a
// payment racing on the same loan is fully visible to the waterfall and the
// overpayment guard. Overpayments mark the pending record FAILED and change
// nothing else; a successful application posts the settlement journal,
// records the payment and updates the loan, all in that one transaction.
func (s *PaymentSvc) ProcessCallback(ctx context.Context, req *models.PaymentCallbackRequest) error {
	pending, err := s.repos.Payment.GetPendingByRef(ctx, req.TxnRef)
	if err != nil {
		return err
	}
	if pending == nil {
		s.logger.Warnf("Acknowledged callback for unknown txn ref %s", req.TxnRef)
		return nil
	}
	if pending.IsTerminal() {
		s.logger.Infof("Acknowledged duplicate callback for txn ref %s (status %s)", req.TxnRef, pending.Status)
		return nil
	}

	asOf := time.Now()
	if req.PaidAt != nil && req.PaidAt.Before(asOf) {
		asOf = *req.PaidAt
	}

	tx, err := s.repos.Tx.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			s.repos.Tx.RollbackTx(tx)
		}
	}()

	claimed, err := s.repos.Payment.ClaimPendingTx(ctx, tx, req.TxnRef)
	if err != nil {
		return err
	}
	if claimed == nil {
		// Lost the race to a concurrent delivery of the same callback.
		s.repos.Tx.RollbackTx(tx)
		s.logger.Infof("Acknowledged concurrent duplicate for txn ref %s", req.TxnRef)
		return nil
	}

	loan, err := s.repos.Loan.GetByIDForUpdateTx(ctx, tx, pending.LoanID)
	if err != nil {
		return err
	}

	product, err := s.repos.Product.GetByID(ctx, loan.ProductID)
	if err != nil {
		return err
	}

	statement, err := s.accrual.StatementFor(ctx, loan, asOf)
	if err != nil {
		return err
	}
	accrual := statement.Accrual
	remaining := statement.Remaining

	if req.PaidAmount.GreaterThan(remaining.Add(overpaymentTolerance)) {
		s.logger.Warnf("Rejected overpayment on loan %d: paid=%s remaining=%s txn=%s",
			loan.ID, req.PaidAmount.String(), remaining.String(), req.TxnRef)
		if err = s.repos.Payment.SetPendingStatusTx(ctx, tx, claimed.ID, models.PendingPaymentStatusFailed); err != nil {
			return err
		}
		if err = s.repos.Tx.CommitTx(tx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	settled, err := s.repos.Ledger.SettledByCategoryTx(ctx, tx, loan.ID)
	if err != nil {
		return err
	}

	allocation := allocateWaterfall(accrual, settled, req.PaidAmount)

	var lines []models.JournalLine
	for _, category := range allocationOrder {
		applied := allocation.Amount(category)
		if !applied.IsPositive() {
			continue
		}
		lines = append(lines,
			models.JournalLine{
				Account: models.EntryAccountRef{Type: models.LedgerAccountReceived, Category: category},
				Type:    models.EntryTypeDebit,
				Amount:  applied,
			},
			models.JournalLine{
				Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: category},
				Type:    models.EntryTypeCredit,
				Amount:  applied,
			},
		)
	}

	meta := models.JournalMeta{
		LoanID:      &loan.ID,
		Reference:   req.TxnRef,
		Description: fmt.Sprintf("Repayment on loan #%d", loan.ID),
		Date:        asOf,
	}

	journal, err := s.ledger.PostTx(ctx, tx, product.ProviderID, meta, lines)
	if err != nil {
		return fmt.Errorf("failed to post settlement: %w", err)
	}

	payment := &models.Payment{
		LoanID:                          loan.ID,
		TxnRef:                          req.TxnRef,
		Amount:                          req.PaidAmount,
		Date:                            asOf,
		OutstandingBalanceBeforePayment: remaining,
		JournalEntryID:                  journal.ID,
	}
	if _, err = s.repos.Payment.CreateTx(ctx, tx, payment); err != nil {
		return err
	}

	loan.RepaidAmount = loan.RepaidAmount.Add(req.PaidAmount)
	loan.PenaltyAmount = accrual.Penalty
	if loan.RepaidAmount.GreaterThanOrEqual(accrual.Total) {
		loan.RepaymentStatus = models.RepaymentStatusPaid
		if loan.RepaymentBehavior == nil {
			behavior := models.BehaviorFor(asOf, loan.DueDate)
			loan.RepaymentBehavior = &behavior
		}
	}

	if err = s.repos.Loan.UpdateRepaymentTx(ctx, tx, loan); err != nil {
		return err
	}

	if err = s.repos.Payment.SetPendingStatusTx(ctx, tx, claimed.ID, models.PendingPaymentStatusProcessed); err != nil {
		return err
	}

	if err = s.repos.Tx.CommitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Applied payment %s to loan %d: amount=%s penalty=%s fee=%s interest=%s principal=%s tax=%s status=%s",
		req.TxnRef, loan.ID, req.PaidAmount.String(),
		allocation.Penalty.String(), allocation.ServiceFee.String(), allocation.Interest.String(),
		allocation.Principal.String(), allocation.Tax.String(), loan.RepaymentStatus)

	return nil
}

// allocateWaterfall splits an incoming amount across the obligation
// categories in strict priority order, each step capped at that category's
// remaining due (accrued minus what earlier payments already settled).
func allocateWaterfall(accrual models.Accrual, settled map[models.LedgerCategory]decimal.Decimal, amount decimal.Decimal) models.PaymentAllocation {
	allocation := models.PaymentAllocation{}
	remaining := amount

	for _, category := range allocationOrder {
		due := accrual.Amount(category).Sub(settled[category])
		if due.IsNegative() {
			due = decimal.Zero
		}
		applied := decimal.Min(remaining, due)
		remaining = remaining.Sub(applied)

		switch category {
		case models.CategoryPenalty:
			allocation.Penalty = applied
		case models.CategoryServiceFee:
			allocation.ServiceFee = applied
		case models.CategoryInterest:
			allocation.Interest = applied
		case models.CategoryPrincipal:
			allocation.Principal = applied
		case models.CategoryTax:
			allocation.Tax = applied
		}
	}

	return allocation
}
