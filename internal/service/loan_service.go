package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// LoanSvc is an implementation of the service.LoanService interface
type LoanSvc struct {
	repos   *repository.Repository
	logger  *logrus.Logger
	scoring ScoringService
	ledger  LedgerService
}

// NewLoanService creates a new LoanSvc
func NewLoanService(deps Dependencies, scoring ScoringService, ledger LedgerService) *LoanSvc {
	return &LoanSvc{
		repos:   deps.Repos,
		logger:  deps.Logger,
		scoring: scoring,
		ledger:  ledger,
	}
}

// Disburse issues a loan: the scoring gate bounds the amount, the service fee
// is computed from the product once and frozen onto the loan, the opening
// receivables are posted and the provider's capital pool is decremented, all
// in one transaction.
func (s *LoanSvc) Disburse(ctx context.Context, req *models.DisburseRequest) (*models.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid disburse request: %w", err)
	}

	eligibility, err := s.scoring.EvaluateEligibility(ctx, req.BorrowerID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("eligibility check failed: %w", err)
	}
	if !eligibility.Eligible {
		return nil, fmt.Errorf("borrower not eligible: %s", eligibility.Reason)
	}
	if req.Amount.GreaterThan(eligibility.AccessibleAmount) {
		return nil, models.ErrAmountExceedsAccessible
	}

	product, err := s.repos.Product.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	provider, err := s.repos.Provider.GetByID(ctx, product.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.InitialBalance.LessThan(req.Amount) {
		return nil, models.ErrInsufficientCapital
	}

	serviceFee := product.ServiceFee.AmountFor(req.Amount)
	now := time.Now()

	loan := &models.Loan{
		BorrowerID:      req.BorrowerID,
		ProductID:       req.ProductID,
		LoanAmount:      req.Amount,
		ServiceFee:      serviceFee,
		DisbursedDate:   now,
		DueDate:         now.AddDate(0, 0, product.DurationDays),
		RepaymentStatus: models.RepaymentStatusUnpaid,
	}

	tx, err := s.repos.Tx.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			s.repos.Tx.RollbackTx(tx)
		}
	}()

	loanID, err := s.repos.Loan.CreateTx(ctx, tx, loan)
	if err != nil {
		return nil, err
	}
	loan.ID = loanID

	lines := []models.JournalLine{
		{
			Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: models.CategoryPrincipal},
			Type:    models.EntryTypeDebit,
			Amount:  req.Amount,
		},
		{
			Account: models.EntryAccountRef{Type: models.LedgerAccountReceived, Category: models.CategoryPrincipal},
			Type:    models.EntryTypeCredit,
			Amount:  req.Amount,
		},
	}
	if serviceFee.IsPositive() {
		lines = append(lines,
			models.JournalLine{
				Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: models.CategoryServiceFee},
				Type:    models.EntryTypeDebit,
				Amount:  serviceFee,
			},
			models.JournalLine{
				Account: models.EntryAccountRef{Type: models.LedgerAccountIncome, Category: models.CategoryServiceFee},
				Type:    models.EntryTypeCredit,
				Amount:  serviceFee,
			},
		)
	}

	meta := models.JournalMeta{
		LoanID:      &loan.ID,
		Reference:   uuid.NewString(),
		Description: fmt.Sprintf("Disbursement of loan #%d", loan.ID),
		Date:        now,
	}

	if _, err = s.ledger.PostTx(ctx, tx, provider.ID, meta, lines); err != nil {
		return nil, fmt.Errorf("failed to post disbursement: %w", err)
	}

	if err = s.repos.Provider.AdjustBalanceTx(ctx, tx, provider.ID, req.Amount.Neg()); err != nil {
		return nil, err
	}

	if err = s.repos.Tx.CommitTx(tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Disbursed loan %d: borrower=%d product=%d amount=%s fee=%s",
		loan.ID, req.BorrowerID, req.ProductID, req.Amount.String(), serviceFee.String())

	return loan, nil
}

// GetByID gets a loan by ID
func (s *LoanSvc) GetByID(ctx context.Context, id int) (*models.Loan, error) {
	return s.repos.Loan.GetByID(ctx, id)
}
