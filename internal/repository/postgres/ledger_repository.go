package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"lending-service/internal/models"
)

// LedgerRepo is a PostgreSQL implementation of the repository.LedgerRepository interface
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepo
func NewLedgerRepository(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// GetAccountTx resolves a provider account by (type, category) within an
// existing transaction, locking the row for the balance update that follows.
func (r *LedgerRepo) GetAccountTx(ctx context.Context, tx *sql.Tx, providerID int, ref models.EntryAccountRef) (*models.LedgerAccount, error) {
	query := `SELECT id, provider_id, type, category, balance, created_at, updated_at
             FROM ledger_accounts WHERE provider_id = $1 AND type = $2 AND category = $3
             FOR UPDATE`

	account := &models.LedgerAccount{}
	err := tx.QueryRowContext(ctx, query, providerID, ref.Type, ref.Category).Scan(
		&account.ID,
		&account.ProviderID,
		&account.Type,
		&account.Category,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrLedgerAccountMissing
		}
		return nil, fmt.Errorf("failed to get ledger account: %w", err)
	}

	return account, nil
}

// GetAccountsByProvider gets the provider's full chart of accounts
func (r *LedgerRepo) GetAccountsByProvider(ctx context.Context, providerID int) ([]*models.LedgerAccount, error) {
	query := `SELECT id, provider_id, type, category, balance, created_at, updated_at
             FROM ledger_accounts WHERE provider_id = $1 ORDER BY type, category`

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.LedgerAccount
	for rows.Next() {
		account := &models.LedgerAccount{}
		err := rows.Scan(
			&account.ID,
			&account.ProviderID,
			&account.Type,
			&account.Category,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger accounts: %w", err)
	}

	return accounts, nil
}

// AdjustAccountBalanceTx applies a signed delta to an account balance within
// an existing transaction
func (r *LedgerRepo) AdjustAccountBalanceTx(ctx context.Context, tx *sql.Tx, accountID int, delta decimal.Decimal) error {
	query := `UPDATE ledger_accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`

	res, err := tx.ExecContext(ctx, query, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrLedgerAccountMissing
	}

	return nil
}

// CreateJournalEntryTx creates a journal entry within an existing transaction
func (r *LedgerRepo) CreateJournalEntryTx(ctx context.Context, tx *sql.Tx, entry *models.JournalEntry) (int, error) {
	query := `INSERT INTO journal_entries (provider_id, loan_id, reference, description, date)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		entry.ProviderID,
		entry.LoanID,
		entry.Reference,
		entry.Description,
		entry.Date,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return id, nil
}

// CreateLedgerEntryTx creates one ledger entry within an existing transaction
func (r *LedgerRepo) CreateLedgerEntryTx(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) (int, error) {
	query := `INSERT INTO ledger_entries (journal_entry_id, account_id, type, amount)
             VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		entry.JournalEntryID,
		entry.AccountID,
		entry.Type,
		entry.Amount,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return id, nil
}

// querier covers the query method shared between sql.DB and sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SettledByCategory sums, per obligation category, what has already been
// settled against the loan: credits posted to the provider's Receivable
// accounts by the loan's journal entries. The ledger is the source of truth
// for how much of each category a past payment covered.
func (r *LedgerRepo) SettledByCategory(ctx context.Context, loanID int) (map[models.LedgerCategory]decimal.Decimal, error) {
	return r.settledByCategory(ctx, r.db, loanID)
}

// SettledByCategoryTx is SettledByCategory within an existing transaction, so
// the allocator reads figures consistent with the loan row it holds locked
func (r *LedgerRepo) SettledByCategoryTx(ctx context.Context, tx *sql.Tx, loanID int) (map[models.LedgerCategory]decimal.Decimal, error) {
	return r.settledByCategory(ctx, tx, loanID)
}

func (r *LedgerRepo) settledByCategory(ctx context.Context, q querier, loanID int) (map[models.LedgerCategory]decimal.Decimal, error) {
	query := `SELECT a.category, COALESCE(SUM(e.amount), 0)
             FROM ledger_entries e
             JOIN ledger_accounts a ON a.id = e.account_id
             JOIN journal_entries j ON j.id = e.journal_entry_id
             WHERE j.loan_id = $1 AND a.type = $2 AND e.type = $3
             GROUP BY a.category`

	rows, err := q.QueryContext(ctx, query, loanID, models.LedgerAccountReceivable, models.EntryTypeCredit)
	if err != nil {
		return nil, fmt.Errorf("failed to get settled amounts: %w", err)
	}
	defer rows.Close()

	settled := map[models.LedgerCategory]decimal.Decimal{}
	for rows.Next() {
		var category models.LedgerCategory
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan settled amount: %w", err)
		}
		settled[category] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settled amounts: %w", err)
	}

	return settled, nil
}
