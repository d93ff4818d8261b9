package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"lending-service/internal/models"
	"lending-service/internal/repository/postgres"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error
}

// BorrowerRepository defines methods for borrower persistence
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *models.Borrower) (int, error)
	GetByID(ctx context.Context, id int) (*models.Borrower, error)
	GetAttributes(ctx context.Context, borrowerID int) (models.BorrowerAttributes, error)
	FlagNonPerformingTx(ctx context.Context, tx *sql.Tx, borrowerIDs []int) (int, error)
}

// ProviderRepository defines methods for provider persistence
type ProviderRepository interface {
	GetByID(ctx context.Context, id int) (*models.LoanProvider, error)
	GetAll(ctx context.Context) ([]*models.LoanProvider, error)
	AdjustBalanceTx(ctx context.Context, tx *sql.Tx, id int, delta decimal.Decimal) error
	GetTaxes(ctx context.Context, providerID int) ([]*models.Tax, error)
}

// ProductRepository defines methods for product persistence
type ProductRepository interface {
	GetByID(ctx context.Context, id int) (*models.LoanProduct, error)
	GetByProviderID(ctx context.Context, providerID int) ([]*models.LoanProduct, error)
	GetAmountTiers(ctx context.Context, productID int) ([]*models.LoanAmountTier, error)
	GetCycleConfig(ctx context.Context, productID int) (*models.LoanCycleConfig, error)
}

// LoanRepository defines methods for loan persistence
type LoanRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) (int, error)
	GetByID(ctx context.Context, id int) (*models.Loan, error)
	GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id int) (*models.Loan, error)
	GetByBorrowerID(ctx context.Context, borrowerID int) ([]*models.Loan, error)
	GetUnpaidByBorrowerAndProduct(ctx context.Context, borrowerID, productID int) ([]*models.Loan, error)
	GetUnpaidByBorrowerAndProvider(ctx context.Context, borrowerID, providerID int) ([]*models.Loan, error)
	GetOverdueByProvider(ctx context.Context, providerID int, disbursedBefore time.Time) ([]*models.Loan, error)
	UpdateRepaymentTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) error
}

// LedgerRepository defines methods for ledger persistence
type LedgerRepository interface {
	GetAccountTx(ctx context.Context, tx *sql.Tx, providerID int, ref models.EntryAccountRef) (*models.LedgerAccount, error)
	GetAccountsByProvider(ctx context.Context, providerID int) ([]*models.LedgerAccount, error)
	AdjustAccountBalanceTx(ctx context.Context, tx *sql.Tx, accountID int, delta decimal.Decimal) error
	CreateJournalEntryTx(ctx context.Context, tx *sql.Tx, entry *models.JournalEntry) (int, error)
	CreateLedgerEntryTx(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) (int, error)
	SettledByCategory(ctx context.Context, loanID int) (map[models.LedgerCategory]decimal.Decimal, error)
	SettledByCategoryTx(ctx context.Context, tx *sql.Tx, loanID int) (map[models.LedgerCategory]decimal.Decimal, error)
}

// PaymentRepository defines methods for payment persistence
type PaymentRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error)
	GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error)
	CreatePending(ctx context.Context, pending *models.PendingPayment) (int, error)
	GetPendingByRef(ctx context.Context, txnRef string) (*models.PendingPayment, error)
	ClaimPendingTx(ctx context.Context, tx *sql.Tx, txnRef string) (*models.PendingPayment, error)
	SetPendingStatusTx(ctx context.Context, tx *sql.Tx, id int, status models.PendingPaymentStatus) error
}

// ScoringRepository defines methods for scoring configuration persistence
type ScoringRepository interface {
	GetParametersByProvider(ctx context.Context, providerID int) ([]*models.ScoringParameter, error)
}

// Repository is a composition of all repositories
type Repository struct {
	Tx       TransactionManager
	Borrower BorrowerRepository
	Provider ProviderRepository
	Product  ProductRepository
	Loan     LoanRepository
	Ledger   LedgerRepository
	Payment  PaymentRepository
	Scoring  ScoringRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Tx:       postgres.NewTxManager(db),
		Borrower: postgres.NewBorrowerRepository(db),
		Provider: postgres.NewProviderRepository(db),
		Product:  postgres.NewProductRepository(db),
		Loan:     postgres.NewLoanRepository(db),
		Ledger:   postgres.NewLedgerRepository(db),
		Payment:  postgres.NewPaymentRepository(db),
		Scoring:  postgres.NewScoringRepository(db),
	}
}
