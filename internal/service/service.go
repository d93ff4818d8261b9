package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// LoanStatement is the point-in-time view of what a loan owes and what
// remains after payments.
type LoanStatement struct {
	LoanID       int             `json:"loan_id"`
	AsOf         time.Time       `json:"as_of"`
	Accrual      models.Accrual  `json:"accrual"`
	RepaidAmount decimal.Decimal `json:"repaid_amount"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// EligibilityResult is the outcome of an eligibility check for one borrower
// on one product.
type EligibilityResult struct {
	Eligible         bool            `json:"eligible"`
	Reason           string          `json:"reason,omitempty"`
	Score            int             `json:"score"`
	AccessibleAmount decimal.Decimal `json:"accessible_amount"`
}

// AccrualService computes owed breakdowns for reporting and allocation
type AccrualService interface {
	Outstanding(ctx context.Context, loanID int, asOf time.Time) (*LoanStatement, error)
	StatementFor(ctx context.Context, loan *models.Loan, asOf time.Time) (*LoanStatement, error)
}

// LedgerService posts balanced journal movements for a provider
type LedgerService interface {
	PostTx(ctx context.Context, tx *sql.Tx, providerID int, meta models.JournalMeta, lines []models.JournalLine) (*models.JournalEntry, error)
	TrialBalance(ctx context.Context, providerID int) ([]*models.LedgerAccount, error)
}

// LoanService issues loans after the eligibility gate
type LoanService interface {
	Disburse(ctx context.Context, req *models.DisburseRequest) (*models.Loan, error)
	GetByID(ctx context.Context, id int) (*models.Loan, error)
}

// PaymentService applies gateway payments to loans
type PaymentService interface {
	Initiate(ctx context.Context, loanID int) (*models.PendingPayment, error)
	ProcessCallback(ctx context.Context, req *models.PaymentCallbackRequest) error
}

// ScoringService scores borrowers and bounds what they may borrow
type ScoringService interface {
	EvaluateEligibility(ctx context.Context, borrowerID, productID int) (*EligibilityResult, error)
}

// NPLService scans for loans overdue past their provider's threshold
type NPLService interface {
	Run(ctx context.Context) (int, error)
}

// NotificationService delivers borrower and provider notifications.
// Delivery failures are the caller's to log; they never abort engine work.
type NotificationService interface {
	NotifyNonPerforming(ctx context.Context, borrower *models.Borrower, provider *models.LoanProvider) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos  *repository.Repository
	Logger *logrus.Logger
	Config *configs.Config
}

// Service is a composition of all services
type Service struct {
	Accrual      AccrualService
	Ledger       LedgerService
	Loan         LoanService
	Payment      PaymentService
	Scoring      ScoringService
	NPL          NPLService
	Notification NotificationService
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	accrual := NewAccrualService(deps)
	ledger := NewLedgerService(deps)
	scoring := NewScoringService(deps)
	notification := NewNotificationService(deps)

	return &Service{
		Accrual:      accrual,
		Ledger:       ledger,
		Loan:         NewLoanService(deps, scoring, ledger),
		Payment:      NewPaymentService(deps, accrual, ledger),
		Scoring:      scoring,
		NPL:          NewNPLService(deps, notification),
		Notification: notification,
	}
}
