package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-service/internal/models"
)

func TestPostTx(t *testing.T) {
	store := newFakeStore()
	store.providers[1] = &models.LoanProvider{ID: 1, Name: "Acme Capital"}
	store.addAccounts(1)

	svc := NewLedgerService(newTestDeps(store))

	loanID := 7
	meta := models.JournalMeta{
		LoanID:      &loanID,
		Reference:   "ref-1",
		Description: "Disbursement of loan #7",
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	lines := []models.JournalLine{
		{Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: models.CategoryPrincipal}, Type: models.EntryTypeDebit, Amount: decimal.NewFromInt(5000)},
		{Account: models.EntryAccountRef{Type: models.LedgerAccountReceived, Category: models.CategoryPrincipal}, Type: models.EntryTypeCredit, Amount: decimal.NewFromInt(5000)},
	}

	entry, err := svc.PostTx(context.Background(), nil, 1, meta, lines)
	require.NoError(t, err)

	assert.Equal(t, "ref-1", entry.Reference)
	assert.Len(t, store.entries, 2)

	// Both accounts are debit-normal: debit raises, credit lowers.
	assert.True(t, decimal.NewFromInt(5000).Equal(store.accountBalance(1, models.LedgerAccountReceivable, models.CategoryPrincipal)))
	assert.True(t, decimal.NewFromInt(-5000).Equal(store.accountBalance(1, models.LedgerAccountReceived, models.CategoryPrincipal)))
}

func TestPostTx_UnbalancedRejected(t *testing.T) {
	store := newFakeStore()
	store.providers[1] = &models.LoanProvider{ID: 1, Name: "Acme Capital"}
	store.addAccounts(1)

	svc := NewLedgerService(newTestDeps(store))

	lines := []models.JournalLine{
		{Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: models.CategoryPrincipal}, Type: models.EntryTypeDebit, Amount: decimal.NewFromInt(5000)},
	}

	_, err := svc.PostTx(context.Background(), nil, 1, models.JournalMeta{Reference: "ref-1"}, lines)

	assert.ErrorIs(t, err, models.ErrUnbalancedJournal)
	assert.Empty(t, store.journals)
	assert.Empty(t, store.entries)
}

func TestPostTx_MissingAccountAbortsPosting(t *testing.T) {
	store := newFakeStore()
	store.providers[1] = &models.LoanProvider{ID: 1, Name: "Acme Capital"}
	// No chart of accounts seeded.

	svc := NewLedgerService(newTestDeps(store))

	lines := []models.JournalLine{
		{Account: models.EntryAccountRef{Type: models.LedgerAccountReceivable, Category: models.CategoryPrincipal}, Type: models.EntryTypeDebit, Amount: decimal.NewFromInt(100)},
		{Account: models.EntryAccountRef{Type: models.LedgerAccountReceived, Category: models.CategoryPrincipal}, Type: models.EntryTypeCredit, Amount: decimal.NewFromInt(100)},
	}

	_, err := svc.PostTx(context.Background(), nil, 1, models.JournalMeta{Reference: "ref-1"}, lines)

	assert.ErrorIs(t, err, models.ErrLedgerAccountMissing)
	assert.Empty(t, store.journals, "nothing written when an account is missing")
	assert.Empty(t, store.entries)
}

func TestTrialBalance(t *testing.T) {
	store := newFakeStore()
	store.providers[1] = &models.LoanProvider{ID: 1, Name: "Acme Capital"}
	store.addAccounts(1)

	svc := NewLedgerService(newTestDeps(store))
	accounts, err := svc.TrialBalance(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, accounts, 15, "three types across five categories")
}
