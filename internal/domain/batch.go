package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// BatchStatus represents the lifecycle state of a survey batch.
type BatchStatus string

const (
	BatchStatusDraft  BatchStatus = "draft"
	BatchStatusActive BatchStatus = "active"
	BatchStatusClosed BatchStatus = "closed"
)

func (s BatchStatus) String() string { return string(s) }

func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusDraft, BatchStatusActive, BatchStatusClosed:
		return true
	}
	return false
}

func ParseBatchStatusFromString(s string) (BatchStatus, error) {
	st := BatchStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// Category classifies a batch for the narrower "one active of this kind" rule.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryKKProfiling Category = "kk_profiling"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryKKProfiling:
		return true
	}
	return false
}

// Exclusive reports whether at most one active batch of this category may exist
// on top of the global one-active rule.
func (c Category) Exclusive() bool {
	return c == CategoryKKProfiling
}

func ParseCategoryFromString(s string) (Category, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return CategoryGeneral, nil
	}
	c := Category(trimmed)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid category %q", ErrValidation, s)
	}
	return c, nil
}

// Target age bounds for respondents.
const (
	MinTargetAge = 15
	MaxTargetAge = 30
)

const batchIDPrefix = "BAT"

// SurveyBatch is a time-boxed window during which the questionnaire accepts responses.
type SurveyBatch struct {
	ID           string
	Name         string
	Description  *string
	Category     Category
	StartDate    time.Time
	EndDate      time.Time
	Status       BatchStatus
	TargetAgeMin int
	TargetAgeMax int
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	PausedAt     *time.Time
	PausedBy     *string
	PausedReason *string
	ResumedAt    *time.Time
	ResumedBy    *string
}

// IsPaused is the orthogonal paused flag of an active batch.
func (b *SurveyBatch) IsPaused() bool {
	return b != nil && b.Status == BatchStatusActive && b.PausedAt != nil
}

// Includes reports whether day falls inside the inclusive [StartDate, EndDate] window.
func (b *SurveyBatch) Includes(day time.Time) bool {
	day = DateOf(day)
	return !day.Before(DateOf(b.StartDate)) && !day.After(DateOf(b.EndDate))
}

func (b *SurveyBatch) Ref() BatchRef {
	return BatchRef{ID: b.ID, Name: b.Name}
}

func (b *SurveyBatch) clearPause() {
	b.PausedAt = nil
	b.PausedBy = nil
	b.PausedReason = nil
}

// Pause records pause metadata. The status stays active.
func (b *SurveyBatch) Pause(actorID string, reason string, at time.Time) {
	b.ResumedAt = nil
	b.ResumedBy = nil
	b.PausedAt = &at
	b.PausedBy = &actorID
	b.PausedReason = &reason
}

// Resume clears pause metadata and records who resumed the batch.
func (b *SurveyBatch) Resume(actorID string, at time.Time) {
	b.clearPause()
	b.ResumedAt = &at
	b.ResumedBy = &actorID
}

// Activate moves the batch to active with a clean pause/resume history.
func (b *SurveyBatch) Activate() {
	b.Status = BatchStatusActive
	b.clearPause()
	b.ResumedAt = nil
	b.ResumedBy = nil
}

// Close moves the batch to closed. An end date in the future is clamped to today
// so the stored window records the actual close date. The window never shrinks
// below one day past its start.
func (b *SurveyBatch) Close(today time.Time) {
	today = DateOf(today)
	if DateOf(b.EndDate).After(today) {
		b.EndDate = today
		if floor := DateOf(b.StartDate).AddDate(0, 0, 1); b.EndDate.Before(floor) {
			b.EndDate = floor
		}
	}
	b.Status = BatchStatusClosed
	b.clearPause()
}

// BatchRef identifies a batch in conflict reports.
type BatchRef struct {
	ID   string `json:"batchId"`
	Name string `json:"batchName"`
}

func (r BatchRef) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.ID)
}

func joinRefs(refs []BatchRef) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, ref.String())
	}
	return strings.Join(parts, ", ")
}

// NameKey folds a batch name for case-insensitive uniqueness.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Overlaps is the inclusive window overlap test.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(DateOf(aEnd).Before(DateOf(bStart)) || DateOf(aStart).After(DateOf(bEnd)))
}

// BatchPatch lists exactly the columns the generic update path may change.
// Nil fields are left as they are.
type BatchPatch struct {
	Name         *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	TargetAgeMin *int
	TargetAgeMax *int
}

func (p BatchPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.StartDate == nil &&
		p.EndDate == nil && p.TargetAgeMin == nil && p.TargetAgeMax == nil
}

// Apply returns a copy of b with the patch merged in.
func (p BatchPatch) Apply(b SurveyBatch) SurveyBatch {
	merged := b
	if p.Name != nil {
		merged.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		merged.Description = normalizeOptionalString(p.Description)
	}
	if p.StartDate != nil {
		merged.StartDate = DateOf(*p.StartDate)
	}
	if p.EndDate != nil {
		merged.EndDate = DateOf(*p.EndDate)
	}
	if p.TargetAgeMin != nil {
		merged.TargetAgeMin = *p.TargetAgeMin
	}
	if p.TargetAgeMax != nil {
		merged.TargetAgeMax = *p.TargetAgeMax
	}
	return merged
}

// NewBatchInput is the creation payload.
type NewBatchInput struct {
	Name         string
	Description  *string
	Category     Category
	StartDate    time.Time
	EndDate      time.Time
	TargetAgeMin *int
	TargetAgeMax *int
	CreatedBy    string
}

// Draft builds the draft batch a create call will validate and insert.
func (in NewBatchInput) Draft() SurveyBatch {
	b := SurveyBatch{
		Name:         strings.TrimSpace(in.Name),
		Description:  normalizeOptionalString(in.Description),
		Category:     in.Category,
		Status:       BatchStatusDraft,
		TargetAgeMin: MinTargetAge,
		TargetAgeMax: MaxTargetAge,
		CreatedBy:    strings.TrimSpace(in.CreatedBy),
	}
	if b.Category == "" {
		b.Category = CategoryGeneral
	}
	if !in.StartDate.IsZero() {
		b.StartDate = DateOf(in.StartDate)
	}
	if !in.EndDate.IsZero() {
		b.EndDate = DateOf(in.EndDate)
	}
	if in.TargetAgeMin != nil {
		b.TargetAgeMin = *in.TargetAgeMin
	}
	if in.TargetAgeMax != nil {
		b.TargetAgeMax = *in.TargetAgeMax
	}
	return b
}

// FormatBatchID renders the sequential identifier, e.g. BAT001.
func FormatBatchID(n int) string {
	return fmt.Sprintf("%s%03d", batchIDPrefix, n)
}

// ParseBatchSeq extracts the numeric suffix of a BAT<digits> id.
func ParseBatchSeq(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, batchIDPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func normalizeOptionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
