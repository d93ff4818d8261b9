package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// LedgerSvc is an implementation of the service.LedgerService interface
type LedgerSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewLedgerService creates a new LedgerSvc
func NewLedgerService(deps Dependencies) *LedgerSvc {
	return &LedgerSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// PostTx posts one journal entry with its ledger entries and balance deltas
// inside the caller's transaction. The lines must balance, every referenced
// account must exist in the provider's chart, and any failure leaves the
// transaction for the caller to roll back, so partial postings are never
// observable.
func (s *LedgerSvc) PostTx(ctx context.Context, tx *sql.Tx, providerID int, meta models.JournalMeta, lines []models.JournalLine) (*models.JournalEntry, error) {
	if err := models.CheckBalanced(lines); err != nil {
		return nil, err
	}

	// Resolve every account before writing anything: a missing account is a
	// configuration error that must abort the whole posting.
	accounts := make([]*models.LedgerAccount, len(lines))
	for i, line := range lines {
		account, err := s.repos.Ledger.GetAccountTx(ctx, tx, providerID, line.Account)
		if err != nil {
			return nil, fmt.Errorf("account %s/%s: %w", line.Account.Type, line.Account.Category, err)
		}
		accounts[i] = account
	}

	entry := &models.JournalEntry{
		ProviderID:  providerID,
		LoanID:      meta.LoanID,
		Reference:   meta.Reference,
		Description: meta.Description,
		Date:        meta.Date,
	}

	journalID, err := s.repos.Ledger.CreateJournalEntryTx(ctx, tx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = journalID

	for i, line := range lines {
		_, err := s.repos.Ledger.CreateLedgerEntryTx(ctx, tx, &models.LedgerEntry{
			JournalEntryID: journalID,
			AccountID:      accounts[i].ID,
			Type:           line.Type,
			Amount:         line.Amount,
		})
		if err != nil {
			return nil, err
		}

		delta := accounts[i].BalanceDelta(line.Type, line.Amount)
		if err := s.repos.Ledger.AdjustAccountBalanceTx(ctx, tx, accounts[i].ID, delta); err != nil {
			return nil, err
		}
	}

	s.logger.Infof("Posted journal entry %d (%s) for provider %d with %d lines",
		journalID, meta.Reference, providerID, len(lines))

	return entry, nil
}

// TrialBalance returns the provider's chart of accounts with current balances
func (s *LedgerSvc) TrialBalance(ctx context.Context, providerID int) ([]*models.LedgerAccount, error) {
	accounts, err := s.repos.Ledger.GetAccountsByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger accounts: %w", err)
	}
	return accounts, nil
}
