package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// ScoringSvc is an implementation of the service.ScoringService interface
type ScoringSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewScoringService creates a new ScoringSvc
func NewScoringService(deps Dependencies) *ScoringSvc {
	return &ScoringSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// EvaluateEligibility runs the full gate for one borrower on one product:
// status and concurrency preconditions, the eligibility filter, rule scoring
// and the cycle-limited accessible amount. Precondition failures come back as
// an ineligible result, not an error; errors mean the check itself could not
// run.
func (s *ScoringSvc) EvaluateEligibility(ctx context.Context, borrowerID, productID int) (*EligibilityResult, error) {
	borrower, err := s.repos.Borrower.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	product, err := s.repos.Product.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if borrower.Status == models.BorrowerStatusNPL {
		return ineligible(models.ErrBorrowerNonPerforming), nil
	}

	sameProduct, err := s.repos.Loan.GetUnpaidByBorrowerAndProduct(ctx, borrowerID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unpaid loans: %w", err)
	}
	if len(sameProduct) > 0 {
		return ineligible(models.ErrUnpaidLoanOnProduct), nil
	}

	allLoans, err := s.repos.Loan.GetByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrower loans: %w", err)
	}

	if !product.AllowConcurrentLoans {
		for _, l := range allLoans {
			if l.RepaymentStatus == models.RepaymentStatusUnpaid {
				return ineligible(models.ErrConcurrentLoanNotAllowed), nil
			}
		}
	}

	attrs, history, err := s.assembleAttributes(ctx, borrowerID, allLoans)
	if err != nil {
		return nil, err
	}

	if len(product.EligibilityFilter) > 0 && !product.EligibilityFilter.Matches(attrs) {
		return ineligible(models.ErrEligibilityFilterMismatch), nil
	}

	params, err := s.repos.Scoring.GetParametersByProvider(ctx, product.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring parameters: %w", err)
	}

	score, err := models.EvaluateScore(attrs, params)
	if err != nil {
		if errors.Is(err, models.ErrNoScoringParameters) {
			return ineligible(err), nil
		}
		return nil, err
	}

	tiers, err := s.repos.Product.GetAmountTiers(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load amount tiers: %w", err)
	}

	cycleConfig, err := s.repos.Product.GetCycleConfig(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle config: %w", err)
	}

	outstanding, err := s.outstandingPrincipal(ctx, borrowerID, product.ProviderID)
	if err != nil {
		return nil, err
	}

	metric := models.MetricTotalCount
	if cycleConfig != nil {
		metric = cycleConfig.Metric
	}

	accessible := models.AccessibleAmount(tiers, cycleConfig, score, history.CountFor(metric), outstanding)

	s.logger.Infof("Scored borrower %d on product %d: score=%d accessible=%s",
		borrowerID, productID, score, accessible.String())

	return &EligibilityResult{
		Eligible:         true,
		Score:            score,
		AccessibleAmount: accessible,
	}, nil
}

func ineligible(reason error) *EligibilityResult {
	return &EligibilityResult{Eligible: false, Reason: reason.Error()}
}

// assembleAttributes merges the provisioned borrower attributes with the
// repayment-history counts computed here. On-time, late and early counts use
// the last five settled loans once the borrower has that many; the total
// count always stays lifetime.
func (s *ScoringSvc) assembleAttributes(ctx context.Context, borrowerID int, loans []*models.Loan) (models.BorrowerAttributes, models.RepaymentHistory, error) {
	attrs, err := s.repos.Borrower.GetAttributes(ctx, borrowerID)
	if err != nil {
		return nil, models.RepaymentHistory{}, err
	}
	if attrs == nil {
		attrs = models.BorrowerAttributes{}
	}

	var settled []*models.Loan
	for _, l := range loans {
		if l.RepaymentStatus == models.RepaymentStatusPaid && l.RepaymentBehavior != nil {
			settled = append(settled, l)
		}
	}

	window := settled
	if len(settled) > 5 {
		window = settled[len(settled)-5:]
	}

	history := models.RepaymentHistory{TotalCount: len(loans)}
	for _, l := range window {
		switch *l.RepaymentBehavior {
		case models.RepaymentBehaviorOnTime:
			history.PaidOnTime++
		case models.RepaymentBehaviorLate:
			history.PaidLate++
		case models.RepaymentBehaviorEarly:
			history.PaidEarly++
		}
	}

	attrs.Set(models.AttrTotalLoansCount, strconv.Itoa(history.TotalCount))
	attrs.Set(models.AttrPaidOnTimeCount, strconv.Itoa(history.PaidOnTime))
	attrs.Set(models.AttrPaidLateCount, strconv.Itoa(history.PaidLate))
	attrs.Set(models.AttrPaidEarlyCount, strconv.Itoa(history.PaidEarly))

	return attrs, history, nil
}

// outstandingPrincipal sums the principal not yet settled on the borrower's
// unpaid loans with the provider, per the loans' own ledger entries.
func (s *ScoringSvc) outstandingPrincipal(ctx context.Context, borrowerID, providerID int) (decimal.Decimal, error) {
	unpaid, err := s.repos.Loan.GetUnpaidByBorrowerAndProvider(ctx, borrowerID, providerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load provider loans: %w", err)
	}

	outstanding := decimal.Zero
	for _, l := range unpaid {
		settled, err := s.repos.Ledger.SettledByCategory(ctx, l.ID)
		if err != nil {
			return decimal.Zero, err
		}
		remaining := l.LoanAmount.Sub(settled[models.CategoryPrincipal])
		if remaining.IsPositive() {
			outstanding = outstanding.Add(remaining)
		}
	}

	return outstanding, nil
}
