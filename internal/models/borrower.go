package models

import (
	"strings"
	"time"
)

// BorrowerStatus defines the status of a borrower
type BorrowerStatus string

const (
	BorrowerStatusActive BorrowerStatus = "ACTIVE"
	// BorrowerStatusNPL is set by the non-performing-loan monitor and blocks
	// new loans from every provider, not just the one that flagged it.
	BorrowerStatusNPL BorrowerStatus = "NPL"
)

// Borrower represents a borrower. Status is global across providers.
type Borrower struct {
	ID          int            `json:"id" db:"id"`
	ExternalKey string         `json:"external_key" db:"external_key"`
	FullName    string         `json:"full_name" db:"full_name"`
	PhoneNumber string         `json:"phone_number" db:"phone_number"`
	Status      BorrowerStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// BorrowerAttributes is the normalized key/value view of a borrower used by
// rule evaluation. Keys are lower-cased once at assembly time so the scoring
// loop never does ad-hoc name matching.
type BorrowerAttributes map[string]string

// NormalizeAttributeKey maps an externally provisioned field name to the form
// used as a map key.
func NormalizeAttributeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get looks an attribute up by field name, tolerating caller-side casing.
func (a BorrowerAttributes) Get(field string) (string, bool) {
	v, ok := a[NormalizeAttributeKey(field)]
	return v, ok
}

// Set stores an attribute under its normalized key.
func (a BorrowerAttributes) Set(field, value string) {
	a[NormalizeAttributeKey(field)] = value
}

// Attribute field names computed from repayment history at assembly time.
const (
	AttrTotalLoansCount = "totalloanscount"
	AttrPaidOnTimeCount = "paidontimecount"
	AttrPaidLateCount   = "paidlatecount"
	AttrPaidEarlyCount  = "paidearlycount"
)
