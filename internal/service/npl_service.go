package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// NPLSvc is an implementation of the service.NPLService interface
type NPLSvc struct {
	repos        *repository.Repository
	logger       *logrus.Logger
	notification NotificationService
}

// NewNPLService creates a new NPLSvc
func NewNPLService(deps Dependencies, notification NotificationService) *NPLSvc {
	return &NPLSvc{
		repos:        deps.Repos,
		logger:       deps.Logger,
		notification: notification,
	}
}

// Run scans every provider's book for loans overdue past that provider's
// threshold and flags their borrowers as non-performing. Each provider is
// processed in its own transaction so one failing provider never blocks the
// rest. Returns the number of borrowers newly flagged.
func (s *NPLSvc) Run(ctx context.Context) (int, error) {
	providers, err := s.repos.Provider.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load providers: %w", err)
	}

	total := 0
	for _, provider := range providers {
		flagged, err := s.runProvider(ctx, provider)
		if err != nil {
			s.logger.Errorf("NPL scan failed for provider %d: %v", provider.ID, err)
			continue
		}
		total += flagged
	}

	s.logger.Infof("NPL scan complete: %d borrowers newly flagged", total)

	return total, nil
}

func (s *NPLSvc) runProvider(ctx context.Context, provider *models.LoanProvider) (int, error) {
	threshold := time.Now().AddDate(0, 0, -provider.NPLThresholdDays)

	overdue, err := s.repos.Loan.GetOverdueByProvider(ctx, provider.ID, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to load overdue loans: %w", err)
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	seen := make(map[int]bool)
	var ids []int
	var borrowers []*models.Borrower
	for _, loan := range overdue {
		if seen[loan.BorrowerID] {
			continue
		}
		seen[loan.BorrowerID] = true

		borrower, err := s.repos.Borrower.GetByID(ctx, loan.BorrowerID)
		if err != nil {
			return 0, err
		}
		if borrower.Status == models.BorrowerStatusNPL {
			continue
		}
		ids = append(ids, borrower.ID)
		borrowers = append(borrowers, borrower)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.repos.Tx.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	flagged, err := s.repos.Borrower.FlagNonPerformingTx(ctx, tx, ids)
	if err != nil {
		s.repos.Tx.RollbackTx(tx)
		return 0, err
	}

	if err := s.repos.Tx.CommitTx(tx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Warnf("Flagged %d borrowers as non-performing for provider %d (threshold %d days)",
		flagged, provider.ID, provider.NPLThresholdDays)

	for _, borrower := range borrowers {
		go func(b *models.Borrower) {
			if err := s.notification.NotifyNonPerforming(context.Background(), b, provider); err != nil {
				s.logger.Warnf("Failed to notify about NPL borrower %d: %v", b.ID, err)
			}
		}(borrower)
	}

	return flagged, nil
}
