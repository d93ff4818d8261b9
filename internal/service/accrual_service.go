package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// AccrualSvc is an implementation of the service.AccrualService interface
type AccrualSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewAccrualService creates a new AccrualSvc
func NewAccrualService(deps Dependencies) *AccrualSvc {
	return &AccrualSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// Outstanding loads a loan and returns the owed breakdown as of the given
// date, clamped to now.
func (s *AccrualSvc) Outstanding(ctx context.Context, loanID int, asOf time.Time) (*LoanStatement, error) {
	loan, err := s.repos.Loan.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}

	return s.StatementFor(ctx, loan, asOf)
}

// StatementFor computes the owed breakdown for an already-loaded loan. The
// payment allocator calls this with a row-locked loan so the figures reflect
// whatever a concurrent payment just committed. The computation itself is
// pure; reporting endpoints and the allocator share it, so identical inputs
// must always produce identical figures.
func (s *AccrualSvc) StatementFor(ctx context.Context, loan *models.Loan, asOf time.Time) (*LoanStatement, error) {
	product, err := s.repos.Product.GetByID(ctx, loan.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	taxes, err := s.repos.Provider.GetTaxes(ctx, product.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxes: %w", err)
	}

	if now := time.Now(); asOf.After(now) {
		asOf = now
	}

	accrual := models.ComputeAccrual(loan, product, taxes, asOf)
	remaining := accrual.Total.Sub(loan.RepaidAmount)

	return &LoanStatement{
		LoanID:       loan.ID,
		AsOf:         asOf,
		Accrual:      accrual,
		RepaidAmount: loan.RepaidAmount,
		Remaining:    remaining,
	}, nil
}
