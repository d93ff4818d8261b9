package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accrual is the owed breakdown of a loan as of a point in time, before any
// payment is applied.
type Accrual struct {
	Principal  decimal.Decimal `json:"principal"`
	Interest   decimal.Decimal `json:"interest"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	Penalty    decimal.Decimal `json:"penalty"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// Amount returns the accrued amount of one obligation category.
func (a Accrual) Amount(c LedgerCategory) decimal.Decimal {
	switch c {
	case CategoryPrincipal:
		return a.Principal
	case CategoryInterest:
		return a.Interest
	case CategoryServiceFee:
		return a.ServiceFee
	case CategoryPenalty:
		return a.Penalty
	case CategoryTax:
		return a.Tax
	}
	return decimal.Zero
}

// ComputeAccrual computes the owed breakdown of a loan under its product's
// fee, penalty and tax configuration as of the given date. It is a pure
// function: no clock, no I/O, identical inputs give identical output. Callers
// wanting "as of now" clamp the date themselves.
//
// Principal and service fee come from the loan record untouched: the service
// fee was frozen at disbursement and product changes must not retroactively
// alter it. The daily fee accrues per elapsed calendar day since disbursement.
// Penalties accrue per overdue day against the ordered rule ranges; a day no
// rule covers contributes nothing.
func ComputeAccrual(loan *Loan, product *LoanProduct, taxes []*Tax, asOf time.Time) Accrual {
	principal := loan.LoanAmount
	serviceFee := loan.ServiceFee

	interest := decimal.Zero
	if days := daysBetween(loan.DisbursedDate, asOf); days > 0 {
		perDay := product.DailyFee.AmountFor(principal)
		interest = perDay.Mul(decimal.NewFromInt(int64(days)))
	}

	penalty := decimal.Zero
	if overdue := daysBetween(loan.DueDate, asOf); overdue > 0 {
		penalty = computePenalty(product.PenaltyRules, principal, overdue)
	}

	tax := decimal.Zero
	for _, t := range taxes {
		if t.AppliesTo(TaxOnServiceFee) {
			tax = tax.Add(serviceFee.Mul(t.Rate).Div(decimal.NewFromInt(100)))
		}
		if t.AppliesTo(TaxOnInterest) {
			tax = tax.Add(interest.Mul(t.Rate).Div(decimal.NewFromInt(100)))
		}
		if t.AppliesTo(TaxOnPenalty) {
			tax = tax.Add(penalty.Mul(t.Rate).Div(decimal.NewFromInt(100)))
		}
	}

	total := principal.Add(interest).Add(serviceFee).Add(penalty).Add(tax)

	return Accrual{
		Principal:  principal,
		Interest:   interest,
		ServiceFee: serviceFee,
		Penalty:    penalty,
		Tax:        tax,
		Total:      total,
	}
}

// computePenalty walks every overdue day, charges the first rule covering it.
// Daily rules charge each covered day, other frequencies charge once per rule
// over the whole overdue span.
func computePenalty(rules []PenaltyRule, principal decimal.Decimal, overdueDays int) decimal.Decimal {
	penalty := decimal.Zero
	chargedOnce := make(map[int]bool)

	for day := 1; day <= overdueDays; day++ {
		for i := range rules {
			rule := &rules[i]
			if !rule.Covers(day) {
				continue
			}
			if rule.Frequency == PenaltyFrequencyDaily {
				penalty = penalty.Add(rule.AmountFor(principal))
			} else if !chargedOnce[i] {
				penalty = penalty.Add(rule.AmountFor(principal))
				chargedOnce[i] = true
			}
			break
		}
	}

	return penalty
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
// Negative when b precedes a.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
