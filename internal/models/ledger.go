package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAccountType defines the role of a ledger account
type LedgerAccountType string

const (
	LedgerAccountReceivable LedgerAccountType = "RECEIVABLE"
	LedgerAccountReceived   LedgerAccountType = "RECEIVED"
	LedgerAccountIncome     LedgerAccountType = "INCOME"
)

// LedgerCategory defines the obligation category an account tracks
type LedgerCategory string

const (
	CategoryPrincipal  LedgerCategory = "PRINCIPAL"
	CategoryInterest   LedgerCategory = "INTEREST"
	CategoryServiceFee LedgerCategory = "SERVICE_FEE"
	CategoryPenalty    LedgerCategory = "PENALTY"
	CategoryTax        LedgerCategory = "TAX"
)

// EntryType defines the side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// LedgerAccount is one balance in a provider's chart, addressed by
// (type, category). Balances are mutated only by the ledger poster, inside
// the same transaction as the journal rows that justify the change.
type LedgerAccount struct {
	ID         int               `json:"id" db:"id"`
	ProviderID int               `json:"provider_id" db:"provider_id"`
	Type       LedgerAccountType `json:"type" db:"type"`
	Category   LedgerCategory    `json:"category" db:"category"`
	Balance    decimal.Decimal   `json:"balance" db:"balance"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// BalanceDelta returns the signed balance change an entry applies to the
// account. Receivable and Received accounts are debit-normal, Income accounts
// are credit-normal.
func (a *LedgerAccount) BalanceDelta(entryType EntryType, amount decimal.Decimal) decimal.Decimal {
	switch a.Type {
	case LedgerAccountIncome:
		if entryType == EntryTypeCredit {
			return amount
		}
		return amount.Neg()
	default:
		if entryType == EntryTypeDebit {
			return amount
		}
		return amount.Neg()
	}
}

// JournalEntry groups the ledger entries of one financial event.
type JournalEntry struct {
	ID          int       `json:"id" db:"id"`
	ProviderID  int       `json:"provider_id" db:"provider_id"`
	LoanID      *int      `json:"loan_id,omitempty" db:"loan_id"`
	Reference   string    `json:"reference" db:"reference"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// LedgerEntry is one side of a journal entry against one account.
type LedgerEntry struct {
	ID             int             `json:"id" db:"id"`
	JournalEntryID int             `json:"journal_entry_id" db:"journal_entry_id"`
	AccountID      int             `json:"account_id" db:"account_id"`
	Type           EntryType       `json:"type" db:"type"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// JournalLine is the posting instruction for one ledger entry: which
// provider account it hits and on which side.
type JournalLine struct {
	Account EntryAccountRef
	Type    EntryType
	Amount  decimal.Decimal
}

// EntryAccountRef addresses a provider account by type and category.
type EntryAccountRef struct {
	Type     LedgerAccountType
	Category LedgerCategory
}

// JournalMeta carries the event-level fields of a posting.
type JournalMeta struct {
	LoanID      *int
	Reference   string
	Description string
	Date        time.Time
}

// CheckBalanced verifies the debit/credit sums of a set of lines match and
// that no line is negative.
func CheckBalanced(lines []JournalLine) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range lines {
		if l.Amount.IsNegative() {
			return ErrNegativeEntryAmount
		}
		if l.Type == EntryTypeDebit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	if !debits.Equal(credits) {
		return ErrUnbalancedJournal
	}
	return nil
}
