package service

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// Transactions are no-ops: tests assert on the resulting state, commit and
// rollback counters catch transaction handling mistakes.
type fakeStore struct {
	borrowers     map[int]*models.Borrower
	attrs         map[int]models.BorrowerAttributes
	providers     map[int]*models.LoanProvider
	taxes         map[int][]*models.Tax
	products      map[int]*models.LoanProduct
	tiers         map[int][]*models.LoanAmountTier
	cycleConfigs  map[int]*models.LoanCycleConfig
	loans         map[int]*models.Loan
	accounts      map[int]*models.LedgerAccount
	journals      map[int]*models.JournalEntry
	entries       []*models.LedgerEntry
	payments      map[int]*models.Payment
	pendings      map[string]*models.PendingPayment
	scoringParams map[int][]*models.ScoringParameter

	nextID    int
	commits   int
	rollbacks int

	// claimHook runs once at the next ClaimPendingTx call, letting a test
	// interleave a competing writer at the claim point.
	claimHook func()
	// adjustBalanceHook runs once at the next provider AdjustBalanceTx call.
	adjustBalanceHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		borrowers:     map[int]*models.Borrower{},
		attrs:         map[int]models.BorrowerAttributes{},
		providers:     map[int]*models.LoanProvider{},
		taxes:         map[int][]*models.Tax{},
		products:      map[int]*models.LoanProduct{},
		tiers:         map[int][]*models.LoanAmountTier{},
		cycleConfigs:  map[int]*models.LoanCycleConfig{},
		loans:         map[int]*models.Loan{},
		accounts:      map[int]*models.LedgerAccount{},
		journals:      map[int]*models.JournalEntry{},
		payments:      map[int]*models.Payment{},
		pendings:      map[string]*models.PendingPayment{},
		scoringParams: map[int][]*models.ScoringParameter{},
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

// addAccounts seeds the full chart for one provider
func (s *fakeStore) addAccounts(providerID int) {
	categories := []models.LedgerCategory{
		models.CategoryPrincipal, models.CategoryInterest, models.CategoryServiceFee,
		models.CategoryPenalty, models.CategoryTax,
	}
	types := []models.LedgerAccountType{
		models.LedgerAccountReceivable, models.LedgerAccountReceived, models.LedgerAccountIncome,
	}
	for _, typ := range types {
		for _, cat := range categories {
			id := s.id()
			s.accounts[id] = &models.LedgerAccount{
				ID: id, ProviderID: providerID, Type: typ, Category: cat, Balance: decimal.Zero,
			}
		}
	}
}

func (s *fakeStore) accountBalance(providerID int, typ models.LedgerAccountType, cat models.LedgerCategory) decimal.Decimal {
	for _, a := range s.accounts {
		if a.ProviderID == providerID && a.Type == typ && a.Category == cat {
			return a.Balance
		}
	}
	return decimal.Zero
}

// TransactionManager

func (s *fakeStore) BeginTx(ctx context.Context) (*sql.Tx, error) { return nil, nil }
func (s *fakeStore) CommitTx(tx *sql.Tx) error                    { s.commits++; return nil }
func (s *fakeStore) RollbackTx(tx *sql.Tx) error                  { s.rollbacks++; return nil }

// BorrowerRepository

func (s *fakeStore) Create(ctx context.Context, borrower *models.Borrower) (int, error) {
	borrower.ID = s.id()
	s.borrowers[borrower.ID] = borrower
	return borrower.ID, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int) (*models.Borrower, error) {
	b, ok := s.borrowers[id]
	if !ok {
		return nil, models.ErrBorrowerNotFound
	}
	return b, nil
}

func (s *fakeStore) GetAttributes(ctx context.Context, borrowerID int) (models.BorrowerAttributes, error) {
	attrs := models.BorrowerAttributes{}
	for k, v := range s.attrs[borrowerID] {
		attrs[k] = v
	}
	return attrs, nil
}

func (s *fakeStore) FlagNonPerformingTx(ctx context.Context, tx *sql.Tx, borrowerIDs []int) (int, error) {
	flagged := 0
	for _, id := range borrowerIDs {
		b, ok := s.borrowers[id]
		if ok && b.Status != models.BorrowerStatusNPL {
			b.Status = models.BorrowerStatusNPL
			flagged++
		}
	}
	return flagged, nil
}

// ProviderRepository

func (s *fakeStore) GetProviderByID(ctx context.Context, id int) (*models.LoanProvider, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, models.ErrProviderNotFound
	}
	return p, nil
}

func (s *fakeStore) GetAll(ctx context.Context) ([]*models.LoanProvider, error) {
	var out []*models.LoanProvider
	for _, p := range s.providers {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) AdjustBalanceTx(ctx context.Context, tx *sql.Tx, id int, delta decimal.Decimal) error {
	if h := s.adjustBalanceHook; h != nil {
		s.adjustBalanceHook = nil
		h()
	}
	p, ok := s.providers[id]
	if !ok {
		return models.ErrProviderNotFound
	}
	if p.InitialBalance.Add(delta).IsNegative() {
		return models.ErrInsufficientCapital
	}
	p.InitialBalance = p.InitialBalance.Add(delta)
	return nil
}

func (s *fakeStore) GetTaxes(ctx context.Context, providerID int) ([]*models.Tax, error) {
	return s.taxes[providerID], nil
}

// ProductRepository

func (s *fakeStore) GetProductByID(ctx context.Context, id int) (*models.LoanProduct, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return p, nil
}

func (s *fakeStore) GetByProviderID(ctx context.Context, providerID int) ([]*models.LoanProduct, error) {
	var out []*models.LoanProduct
	for _, p := range s.products {
		if p.ProviderID == providerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetAmountTiers(ctx context.Context, productID int) ([]*models.LoanAmountTier, error) {
	return s.tiers[productID], nil
}

func (s *fakeStore) GetCycleConfig(ctx context.Context, productID int) (*models.LoanCycleConfig, error) {
	return s.cycleConfigs[productID], nil
}

// LoanRepository

func (s *fakeStore) CreateTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) (int, error) {
	loan.ID = s.id()
	s.loans[loan.ID] = loan
	return loan.ID, nil
}

func (s *fakeStore) GetLoanByID(ctx context.Context, id int) (*models.Loan, error) {
	l, ok := s.loans[id]
	if !ok {
		return nil, models.ErrLoanNotFound
	}
	return l, nil
}

func (s *fakeStore) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id int) (*models.Loan, error) {
	return s.GetLoanByID(ctx, id)
}

func (s *fakeStore) GetByBorrowerID(ctx context.Context, borrowerID int) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range s.loans {
		if l.BorrowerID == borrowerID {
			out = append(out, l)
		}
	}
	// Same ordering the SQL query guarantees.
	sort.Slice(out, func(i, j int) bool { return out[i].DisbursedDate.Before(out[j].DisbursedDate) })
	return out, nil
}

func (s *fakeStore) GetUnpaidByBorrowerAndProduct(ctx context.Context, borrowerID, productID int) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range s.loans {
		if l.BorrowerID == borrowerID && l.ProductID == productID && l.RepaymentStatus == models.RepaymentStatusUnpaid {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) GetUnpaidByBorrowerAndProvider(ctx context.Context, borrowerID, providerID int) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range s.loans {
		product, ok := s.products[l.ProductID]
		if !ok || product.ProviderID != providerID {
			continue
		}
		if l.BorrowerID == borrowerID && l.RepaymentStatus == models.RepaymentStatusUnpaid {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) GetOverdueByProvider(ctx context.Context, providerID int, disbursedBefore time.Time) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, l := range s.loans {
		product, ok := s.products[l.ProductID]
		if !ok || product.ProviderID != providerID {
			continue
		}
		if l.RepaymentStatus == models.RepaymentStatusUnpaid && l.DisbursedDate.Before(disbursedBefore) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateRepaymentTx(ctx context.Context, tx *sql.Tx, loan *models.Loan) error {
	if _, ok := s.loans[loan.ID]; !ok {
		return models.ErrLoanNotFound
	}
	s.loans[loan.ID] = loan
	return nil
}

// LedgerRepository

func (s *fakeStore) GetAccountTx(ctx context.Context, tx *sql.Tx, providerID int, ref models.EntryAccountRef) (*models.LedgerAccount, error) {
	for _, a := range s.accounts {
		if a.ProviderID == providerID && a.Type == ref.Type && a.Category == ref.Category {
			return a, nil
		}
	}
	return nil, models.ErrLedgerAccountMissing
}

func (s *fakeStore) GetAccountsByProvider(ctx context.Context, providerID int) ([]*models.LedgerAccount, error) {
	var out []*models.LedgerAccount
	for _, a := range s.accounts {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) AdjustAccountBalanceTx(ctx context.Context, tx *sql.Tx, accountID int, delta decimal.Decimal) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return models.ErrLedgerAccountMissing
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

func (s *fakeStore) CreateJournalEntryTx(ctx context.Context, tx *sql.Tx, entry *models.JournalEntry) (int, error) {
	entry.ID = s.id()
	s.journals[entry.ID] = entry
	return entry.ID, nil
}

func (s *fakeStore) CreateLedgerEntryTx(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) (int, error) {
	entry.ID = s.id()
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

func (s *fakeStore) SettledByCategoryTx(ctx context.Context, tx *sql.Tx, loanID int) (map[models.LedgerCategory]decimal.Decimal, error) {
	return s.SettledByCategory(ctx, loanID)
}

func (s *fakeStore) SettledByCategory(ctx context.Context, loanID int) (map[models.LedgerCategory]decimal.Decimal, error) {
	settled := map[models.LedgerCategory]decimal.Decimal{}
	for _, e := range s.entries {
		journal, ok := s.journals[e.JournalEntryID]
		if !ok || journal.LoanID == nil || *journal.LoanID != loanID {
			continue
		}
		account, ok := s.accounts[e.AccountID]
		if !ok || account.Type != models.LedgerAccountReceivable || e.Type != models.EntryTypeCredit {
			continue
		}
		settled[account.Category] = settled[account.Category].Add(e.Amount)
	}
	return settled, nil
}

// PaymentRepository

func (s *fakeStore) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error) {
	payment.ID = s.id()
	s.payments[payment.ID] = payment
	return payment.ID, nil
}

func (s *fakeStore) GetByLoanID(ctx context.Context, loanID int) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) CreatePending(ctx context.Context, pending *models.PendingPayment) (int, error) {
	pending.ID = s.id()
	s.pendings[pending.TxnRef] = pending
	return pending.ID, nil
}

func (s *fakeStore) GetPendingByRef(ctx context.Context, txnRef string) (*models.PendingPayment, error) {
	p, ok := s.pendings[txnRef]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (s *fakeStore) ClaimPendingTx(ctx context.Context, tx *sql.Tx, txnRef string) (*models.PendingPayment, error) {
	if h := s.claimHook; h != nil {
		s.claimHook = nil
		h()
	}
	p, ok := s.pendings[txnRef]
	if !ok || p.Status != models.PendingPaymentStatusPending {
		return nil, nil
	}
	return p, nil
}

func (s *fakeStore) SetPendingStatusTx(ctx context.Context, tx *sql.Tx, id int, status models.PendingPaymentStatus) error {
	for _, p := range s.pendings {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return nil
}

// ScoringRepository

func (s *fakeStore) GetParametersByProvider(ctx context.Context, providerID int) ([]*models.ScoringParameter, error) {
	return s.scoringParams[providerID], nil
}

// repo interface adapters: the method sets of several interfaces collide on
// names, so thin per-interface wrappers route to the shared store.

type fakeProviderRepo struct{ *fakeStore }

func (r fakeProviderRepo) GetByID(ctx context.Context, id int) (*models.LoanProvider, error) {
	return r.GetProviderByID(ctx, id)
}

type fakeProductRepo struct{ *fakeStore }

func (r fakeProductRepo) GetByID(ctx context.Context, id int) (*models.LoanProduct, error) {
	return r.GetProductByID(ctx, id)
}

type fakeLoanRepo struct{ *fakeStore }

func (r fakeLoanRepo) GetByID(ctx context.Context, id int) (*models.Loan, error) {
	return r.GetLoanByID(ctx, id)
}

type fakePaymentRepo struct{ *fakeStore }

func (r fakePaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error) {
	return r.CreatePaymentTx(ctx, tx, payment)
}

func newTestRepository(store *fakeStore) *repository.Repository {
	return &repository.Repository{
		Tx:       store,
		Borrower: store,
		Provider: fakeProviderRepo{store},
		Product:  fakeProductRepo{store},
		Loan:     fakeLoanRepo{store},
		Ledger:   store,
		Payment:  fakePaymentRepo{store},
		Scoring:  store,
	}
}

func newTestDeps(store *fakeStore) Dependencies {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return Dependencies{
		Repos:  newTestRepository(store),
		Logger: logger,
		Config: &configs.Config{},
	}
}
