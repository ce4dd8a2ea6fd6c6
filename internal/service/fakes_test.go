package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
)

// memBatchRepo is an in-memory BatchRepository. Transactions are serialized and
// roll back to a snapshot on error. Writes enforce the same guards as the
// database: one active batch, unique folded names, unique ids, no window overlap.
type memBatchRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex
	rows map[string]domain.SurveyBatch

	// hideActiveScans makes the next n active-batch scans come back empty, as a
	// read that raced a concurrent activation would.
	hideActiveScans int
	// lockCalls counts LockForWrite calls.
	lockCalls int
	listErr   error
}

func newMemBatchRepo(batches ...domain.SurveyBatch) *memBatchRepo {
	repo := &memBatchRepo{rows: make(map[string]domain.SurveyBatch)}
	for _, b := range batches {
		repo.rows[b.ID] = b
	}
	return repo
}

func (m *memBatchRepo) Transaction(ctx context.Context, fn func(tx repository.BatchRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := make(map[string]domain.SurveyBatch, len(m.rows))
	for id, b := range m.rows {
		snapshot[id] = b
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memBatchRepo) LockForWrite(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCalls++
	return nil
}

func (m *memBatchRepo) Create(_ context.Context, b *domain.SurveyBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[b.ID]; ok {
		return &repository.ConstraintError{Constraint: repository.ConstraintPrimaryKey, Err: domain.ErrBusinessRule}
	}
	if err := m.checkGuards(*b); err != nil {
		return err
	}
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.rows[b.ID] = *b
	return nil
}

func (m *memBatchRepo) GetByID(_ context.Context, id string) (*domain.SurveyBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *memBatchRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.SurveyBatch, error) {
	return m.GetByID(ctx, id)
}

func (m *memBatchRepo) ListIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memBatchRepo) FindByNameKey(_ context.Context, nameKey string, excludeID string) ([]domain.BatchRef, error) {
	return m.refs(func(b domain.SurveyBatch) bool {
		return b.ID != excludeID && domain.NameKey(b.Name) == nameKey
	}), nil
}

func (m *memBatchRepo) FindActive(_ context.Context, category *domain.Category, excludeID string) ([]domain.BatchRef, error) {
	m.mu.Lock()
	hidden := m.hideActiveScans > 0
	if hidden {
		m.hideActiveScans--
	}
	m.mu.Unlock()
	if hidden {
		return nil, nil
	}

	return m.refs(func(b domain.SurveyBatch) bool {
		if b.ID == excludeID || b.Status != domain.BatchStatusActive {
			return false
		}
		return category == nil || b.Category == *category
	}), nil
}

func (m *memBatchRepo) FindOverlapping(_ context.Context, start, end time.Time, excludeID string) ([]domain.BatchRef, error) {
	return m.refs(func(b domain.SurveyBatch) bool {
		return b.ID != excludeID && domain.Overlaps(start, end, b.StartDate, b.EndDate)
	}), nil
}

func (m *memBatchRepo) UpdateDetails(_ context.Context, b *domain.SurveyBatch) error {
	return m.update(b.ID, func(row *domain.SurveyBatch) {
		row.Name = b.Name
		row.Description = b.Description
		row.StartDate = b.StartDate
		row.EndDate = b.EndDate
		row.TargetAgeMin = b.TargetAgeMin
		row.TargetAgeMax = b.TargetAgeMax
	})
}

func (m *memBatchRepo) UpdateLifecycle(_ context.Context, b *domain.SurveyBatch) error {
	return m.update(b.ID, func(row *domain.SurveyBatch) {
		row.Status = b.Status
		row.StartDate = b.StartDate
		row.EndDate = b.EndDate
		row.PausedAt = b.PausedAt
		row.PausedBy = b.PausedBy
		row.PausedReason = b.PausedReason
		row.ResumedAt = b.ResumedAt
		row.ResumedBy = b.ResumedBy
	})
}

func (m *memBatchRepo) update(id string, apply func(row *domain.SurveyBatch)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	apply(&row)
	if err := m.checkGuards(row); err != nil {
		return err
	}
	row.UpdatedAt = time.Now().UTC()
	m.rows[id] = row
	return nil
}

func (m *memBatchRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memBatchRepo) List(_ context.Context, params repository.ListParams) ([]domain.SurveyBatch, int64, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	params = params.Normalized()

	m.mu.Lock()
	var matched []domain.SurveyBatch
	for _, b := range m.rows {
		if params.Status != nil && b.Status != *params.Status {
			continue
		}
		if params.NameContains != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(params.NameContains)) {
			continue
		}
		matched = append(matched, b)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := min((params.Page-1)*params.PageSize, len(matched))
	end := min(start+params.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (m *memBatchRepo) CountByStatus(context.Context) (domain.DashboardCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counts domain.DashboardCounts
	for _, b := range m.rows {
		counts.Total++
		switch b.Status {
		case domain.BatchStatusActive:
			counts.Active++
		case domain.BatchStatusClosed:
			counts.Closed++
		case domain.BatchStatusDraft:
			counts.Draft++
		}
	}
	return counts, nil
}

func (m *memBatchRepo) refs(match func(b domain.SurveyBatch) bool) []domain.BatchRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	var refs []domain.BatchRef
	for _, b := range m.rows {
		if match(b) {
			refs = append(refs, b.Ref())
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs
}

// checkGuards mirrors the migrations' constraints. Caller holds m.mu.
func (m *memBatchRepo) checkGuards(candidate domain.SurveyBatch) error {
	for id, other := range m.rows {
		if id == candidate.ID {
			continue
		}
		if candidate.Status == domain.BatchStatusActive && other.Status == domain.BatchStatusActive {
			return &repository.ConstraintError{Constraint: repository.ConstraintSingleActive, Err: domain.NewActiveConflict(nil)}
		}
		if domain.NameKey(candidate.Name) == domain.NameKey(other.Name) {
			return &repository.ConstraintError{Constraint: repository.ConstraintNameKey, Err: domain.ErrDuplicateName}
		}
		if domain.Overlaps(candidate.StartDate, candidate.EndDate, other.StartDate, other.EndDate) {
			return &repository.ConstraintError{Constraint: repository.ConstraintWindow, Err: domain.NewDateConflict(nil)}
		}
	}
	if !candidate.StartDate.Before(candidate.EndDate) {
		return &repository.ConstraintError{Constraint: repository.ConstraintDateOrder, Err: domain.ErrValidation}
	}
	if candidate.PausedAt != nil && (candidate.PausedReason == nil || strings.TrimSpace(*candidate.PausedReason) == "") {
		return &repository.ConstraintError{Constraint: repository.ConstraintPauseReason, Err: domain.ErrValidation}
	}
	return nil
}

func (m *memBatchRepo) hideNextActiveScans(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hideActiveScans = n
}

func (m *memBatchRepo) row(id string) domain.SurveyBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type fakeResponseRepo struct {
	countsByBatchFn      func(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error)
	listByBatchFn        func(ctx context.Context, batchID string, params repository.ResponseListParams) ([]domain.SurveyResponse, int64, error)
	countEligibleYouthFn func(ctx context.Context, ageMin, ageMax int) (int64, error)
}

func (f *fakeResponseRepo) CountsByBatch(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error) {
	if f.countsByBatchFn != nil {
		return f.countsByBatchFn(ctx, batchIDs)
	}
	return map[string]domain.ResponseCounts{}, nil
}

func (f *fakeResponseRepo) ListByBatch(ctx context.Context, batchID string, params repository.ResponseListParams) ([]domain.SurveyResponse, int64, error) {
	if f.listByBatchFn != nil {
		return f.listByBatchFn(ctx, batchID, params)
	}
	return nil, 0, nil
}

func (f *fakeResponseRepo) CountEligibleYouth(ctx context.Context, ageMin, ageMax int) (int64, error) {
	if f.countEligibleYouthFn != nil {
		return f.countEligibleYouthFn(ctx, ageMin, ageMax)
	}
	return 0, nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	rejections  []string
	conflicts   []string
}

func (r *recordingMetrics) IncTransition(from string, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+"->"+to)
}

func (r *recordingMetrics) IncRejection(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, code)
}

func (r *recordingMetrics) IncStoreConflict(constraint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts = append(r.conflicts, constraint)
}

type countingCache struct {
	uncachedStats
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func newTestService(repo *memBatchRepo, today time.Time) (*BatchService, *recordingMetrics) {
	metrics := &recordingMetrics{}
	svc, err := NewBatchService(repo, &fakeResponseRepo{}, nil, metrics, time.UTC, nil)
	if err != nil {
		panic(err)
	}
	svc.now = func() time.Time { return today.Add(10 * time.Hour) }
	return svc, metrics
}

func batchFixture(id, name string, status domain.BatchStatus, start, end time.Time) domain.SurveyBatch {
	return domain.SurveyBatch{
		ID:           id,
		Name:         name,
		Category:     domain.CategoryGeneral,
		StartDate:    start,
		EndDate:      end,
		Status:       status,
		TargetAgeMin: domain.MinTargetAge,
		TargetAgeMax: domain.MaxTargetAge,
		CreatedBy:    "admin-1",
	}
}
