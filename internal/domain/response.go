package domain

import (
	"fmt"
	"strings"
	"time"
)

// ValidationStatus is the review outcome of a survey response.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

func (s ValidationStatus) String() string { return string(s) }

func (s ValidationStatus) IsValid() bool {
	switch s {
	case ValidationPending, ValidationValidated, ValidationRejected:
		return true
	}
	return false
}

func ParseValidationStatusFromString(s string) (ValidationStatus, error) {
	st := ValidationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid validation status %q", ErrValidation, s)
	}
	return st, nil
}

// SurveyResponse is one respondent's submission within a batch.
type SurveyResponse struct {
	ID               string
	BatchID          string
	YouthID          string
	ValidationStatus ValidationStatus
	ValidatedBy      *string
	ValidatedAt      *time.Time
	CreatedAt        time.Time
}

// ResponseCounts is the per-batch rollup of responses by validation outcome.
type ResponseCounts struct {
	Total             int64
	Validated         int64
	Rejected          int64
	Pending           int64
	UniqueRespondents int64
}

func (c ResponseCounts) ValidationRate() float64 { return ratio(c.Validated, c.Total) }

func (c ResponseCounts) RejectionRate() float64 { return ratio(c.Rejected, c.Total) }

// BatchStatistics is the read-only aggregate for one batch.
type BatchStatistics struct {
	BatchID        string
	Counts         ResponseCounts
	EligibleYouth  int64
	ValidationRate float64
	RejectionRate  float64
	CoverageRate   float64
}

func NewBatchStatistics(batchID string, counts ResponseCounts, eligibleYouth int64) BatchStatistics {
	return BatchStatistics{
		BatchID:        batchID,
		Counts:         counts,
		EligibleYouth:  eligibleYouth,
		ValidationRate: counts.ValidationRate(),
		RejectionRate:  counts.RejectionRate(),
		CoverageRate:   ratio(counts.UniqueRespondents, eligibleYouth),
	}
}

// DashboardCounts counts batches per status.
type DashboardCounts struct {
	Total  int64
	Active int64
	Closed int64
	Draft  int64
}

// ratio returns part/whole as a percentage rounded to two decimals.
func ratio(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	pct := float64(part) * 100 / float64(whole)
	return float64(int64(pct*100+0.5)) / 100
}
