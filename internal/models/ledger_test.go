package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckBalanced(t *testing.T) {
	tests := []struct {
		name    string
		lines   []JournalLine
		wantErr error
	}{
		{
			name: "balanced pair",
			lines: []JournalLine{
				{Account: EntryAccountRef{Type: LedgerAccountReceivable, Category: CategoryPrincipal}, Type: EntryTypeDebit, Amount: decimal.NewFromInt(5000)},
				{Account: EntryAccountRef{Type: LedgerAccountReceived, Category: CategoryPrincipal}, Type: EntryTypeCredit, Amount: decimal.NewFromInt(5000)},
			},
		},
		{
			name: "balanced across multiple lines",
			lines: []JournalLine{
				{Account: EntryAccountRef{Type: LedgerAccountReceivable, Category: CategoryPrincipal}, Type: EntryTypeDebit, Amount: decimal.NewFromInt(5000)},
				{Account: EntryAccountRef{Type: LedgerAccountReceivable, Category: CategoryServiceFee}, Type: EntryTypeDebit, Amount: decimal.NewFromInt(100)},
				{Account: EntryAccountRef{Type: LedgerAccountReceived, Category: CategoryPrincipal}, Type: EntryTypeCredit, Amount: decimal.NewFromInt(5000)},
				{Account: EntryAccountRef{Type: LedgerAccountIncome, Category: CategoryServiceFee}, Type: EntryTypeCredit, Amount: decimal.NewFromInt(100)},
			},
		},
		{
			name: "unbalanced",
			lines: []JournalLine{
				{Account: EntryAccountRef{Type: LedgerAccountReceivable, Category: CategoryPrincipal}, Type: EntryTypeDebit, Amount: decimal.NewFromInt(5000)},
				{Account: EntryAccountRef{Type: LedgerAccountReceived, Category: CategoryPrincipal}, Type: EntryTypeCredit, Amount: decimal.NewFromInt(4999)},
			},
			wantErr: ErrUnbalancedJournal,
		},
		{
			name: "negative amount",
			lines: []JournalLine{
				{Account: EntryAccountRef{Type: LedgerAccountReceivable, Category: CategoryPrincipal}, Type: EntryTypeDebit, Amount: decimal.NewFromInt(-10)},
				{Account: EntryAccountRef{Type: LedgerAccountReceived, Category: CategoryPrincipal}, Type: EntryTypeCredit, Amount: decimal.NewFromInt(-10)},
			},
			wantErr: ErrNegativeEntryAmount,
		},
		{
			name: "empty set balances trivially",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBalanced(tt.lines)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedgerAccount_BalanceDelta(t *testing.T) {
	amount := decimal.NewFromInt(100)

	receivable := &LedgerAccount{Type: LedgerAccountReceivable}
	assert.True(t, amount.Equal(receivable.BalanceDelta(EntryTypeDebit, amount)))
	assert.True(t, amount.Neg().Equal(receivable.BalanceDelta(EntryTypeCredit, amount)))

	received := &LedgerAccount{Type: LedgerAccountReceived}
	assert.True(t, amount.Equal(received.BalanceDelta(EntryTypeDebit, amount)))
	assert.True(t, amount.Neg().Equal(received.BalanceDelta(EntryTypeCredit, amount)))

	income := &LedgerAccount{Type: LedgerAccountIncome}
	assert.True(t, amount.Equal(income.BalanceDelta(EntryTypeCredit, amount)))
	assert.True(t, amount.Neg().Equal(income.BalanceDelta(EntryTypeDebit, amount)))
}
