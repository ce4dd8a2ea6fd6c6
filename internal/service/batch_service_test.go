package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBatchServiceRequiresRepositories(t *testing.T) {
	t.Parallel()

	if _, err := NewBatchService(nil, &fakeResponseRepo{}, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for nil batch repository")
	}
	if _, err := NewBatchService(newMemBatchRepo(), nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for nil response repository")
	}
}

func TestCreateBatchAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	legacy := batchFixture("LEGACY-9", "Legacy import", domain.BatchStatusClosed, date(2023, 1, 1), date(2023, 2, 1))
	seventh := batchFixture("BAT007", "Wave 7", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1))
	repo := newMemBatchRepo(legacy, seventh)
	svc, _ := newTestService(repo, today)

	first, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name: "Wave 8", StartDate: date(2025, 3, 1), EndDate: date(2025, 4, 1), CreatedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	second, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name: "Wave 9", StartDate: date(2025, 5, 1), EndDate: date(2025, 6, 1), CreatedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	if first.ID != "BAT008" || second.ID != "BAT009" {
		t.Fatalf("ids = %s, %s, want BAT008, BAT009", first.ID, second.ID)
	}
	if repo.lockCalls != 2 {
		t.Fatalf("LockForWrite calls = %d, want 2", repo.lockCalls)
	}
	if first.TargetAgeMin != 15 || first.TargetAgeMax != 30 || first.Category != domain.CategoryGeneral {
		t.Fatalf("defaults not applied: %+v", first)
	}
}

func TestCreateBatchDateConflictListsExistingBatch(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo()
	svc, _ := newTestService(repo, today)
	ctx := context.Background()

	c, err := svc.CreateBatch(ctx, domain.NewBatchInput{
		Name: "Batch C", StartDate: date(2025, 1, 1), EndDate: date(2025, 2, 1), CreatedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("CreateBatch(C) error = %v", err)
	}

	_, err = svc.CreateBatch(ctx, domain.NewBatchInput{
		Name: "Batch D", StartDate: date(2025, 1, 15), EndDate: date(2025, 2, 15), CreatedBy: "admin-1",
	})
	if code := domain.CodeOf(err); code != domain.CodeDateConflict {
		t.Fatalf("CodeOf(err) = %s, want DATE_CONFLICT (err=%v)", code, err)
	}
	refs := domain.ConflictsOf(err)
	if len(refs) != 1 || refs[0].ID != c.ID || refs[0].Name != "Batch C" {
		t.Fatalf("ConflictsOf(err) = %v, want [%s]", refs, c.ID)
	}

	ids, _ := repo.ListIDs(ctx)
	if len(ids) != 1 {
		t.Fatalf("stored batches = %v, want only C", ids)
	}
}

func TestCreateBatchDraftsTakePartInOverlap(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(batchFixture("BAT001", "Planned wave", domain.BatchStatusDraft, date(2025, 6, 1), date(2025, 6, 30)))
	svc, _ := newTestService(repo, today)

	_, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name: "Other wave", StartDate: date(2025, 6, 30), EndDate: date(2025, 7, 15), CreatedBy: "admin-1",
	})
	if code := domain.CodeOf(err); code != domain.CodeDateConflict {
		t.Fatalf("CodeOf(err) = %s, want DATE_CONFLICT for a shared end day", code)
	}
}

func TestCreateBatchReportsEveryProblem(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(
		batchFixture("BAT001", "KK Survey 2025", domain.BatchStatusClosed, date(2025, 1, 1), date(2025, 2, 1)),
		batchFixture("BAT002", "Midyear", domain.BatchStatusDraft, date(2025, 2, 5), date(2025, 3, 1)),
	)
	svc, metrics := newTestService(repo, today)

	_, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name:         "kk survey 2025",
		StartDate:    date(2025, 1, 20),
		EndDate:      date(2025, 2, 10),
		TargetAgeMin: ptr(25),
		TargetAgeMax: ptr(20),
		CreatedBy:    "admin-1",
	})

	var report *domain.ValidationError
	if !errors.As(err, &report) {
		t.Fatalf("CreateBatch() error = %v, want ValidationError", err)
	}

	wantCodes := []domain.ErrorCode{
		domain.CodeDuplicateName,
		domain.CodeDateConflict,
		domain.CodeDateConflict,
		domain.CodeValidation,
	}
	if len(report.Problems) != len(wantCodes) {
		t.Fatalf("problems = %+v, want %d", report.Problems, len(wantCodes))
	}
	for i, want := range wantCodes {
		if report.Problems[i].Code != want {
			t.Fatalf("problem[%d].Code = %s, want %s", i, report.Problems[i].Code, want)
		}
	}
	if report.Problems[1].Conflicts[0].ID != "BAT001" || report.Problems[2].Conflicts[0].ID != "BAT002" {
		t.Fatalf("date conflicts = %+v, want BAT001 then BAT002", report.Problems[1:3])
	}
	if report.Problems[3].Field != "targetAgeMax" {
		t.Fatalf("age problem field = %s, want targetAgeMax", report.Problems[3].Field)
	}
	if domain.CodeOf(err) != domain.CodeDuplicateName {
		t.Fatalf("CodeOf(err) = %s, want the first problem's code", domain.CodeOf(err))
	}
	if !errors.Is(err, domain.ErrDateConflict) || !errors.Is(err, domain.ErrValidation) {
		t.Fatal("report should match every problem's sentinel")
	}
	if len(metrics.rejections) != 1 || metrics.rejections[0] != "DUPLICATE_NAME" {
		t.Fatalf("rejections = %v, want [DUPLICATE_NAME]", metrics.rejections)
	}
}

func TestCreateBatchMissingFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemBatchRepo(), today)

	_, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{Name: "   "})

	var report *domain.ValidationError
	if !errors.As(err, &report) {
		t.Fatalf("CreateBatch() error = %v, want ValidationError", err)
	}
	fields := make(map[string]bool)
	for _, p := range report.Problems {
		if p.Code != domain.CodeValidation {
			t.Fatalf("problem %+v, want VALIDATION_ERROR", p)
		}
		fields[p.Field] = true
	}
	for _, want := range []string{"batchName", "startDate", "endDate", "createdBy"} {
		if !fields[want] {
			t.Fatalf("missing problem for %s in %+v", want, report.Problems)
		}
	}
}

func TestCreateBatchRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(newMemBatchRepo(), today)

	_, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name: "Wave 1", Category: domain.Category("census"), StartDate: date(2025, 3, 1), EndDate: date(2025, 4, 1), CreatedBy: "admin-1",
	})
	if code := domain.CodeOf(err); code != domain.CodeValidation {
		t.Fatalf("CodeOf(err) = %s, want VALIDATION_ERROR", code)
	}
}

func TestCreateBatchInvalidatesCacheAndLogs(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	cache := &countingCache{}
	svc, err := NewBatchService(newMemBatchRepo(), &fakeResponseRepo{}, cache, nil, time.UTC, zap.New(core))
	if err != nil {
		t.Fatalf("NewBatchService() error = %v", err)
	}

	created, err := svc.CreateBatch(context.Background(), domain.NewBatchInput{
		Name: "Wave 1", StartDate: date(2025, 3, 1), EndDate: date(2025, 4, 1), CreatedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if cache.invalidations != 1 {
		t.Fatalf("invalidations = %d, want 1", cache.invalidations)
	}

	entries := recorded.FilterMessage("batch created").All()
	if len(entries) != 1 {
		t.Fatalf("batch created entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["batchId"]; got != created.ID {
		t.Fatalf("batchId field = %v, want %s", got, created.ID)
	}
}

func TestUpdateBatch(t *testing.T) {
	t.Parallel()

	t.Run("renaming to a taken name is a duplicate", func(t *testing.T) {
		t.Parallel()

		repo := newMemBatchRepo(
			batchFixture("BAT001", "KK Survey", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1)),
			batchFixture("BAT002", "Wave 2", domain.BatchStatusDraft, date(2025, 3, 1), date(2025, 4, 1)),
		)
		svc, _ := newTestService(repo, today)

		_, err := svc.UpdateBatch(context.Background(), "BAT002", domain.BatchPatch{Name: ptr("kk SURVEY")}, "admin-1")
		if code := domain.CodeOf(err); code != domain.CodeDuplicateName {
			t.Fatalf("CodeOf(err) = %s, want DUPLICATE_NAME", code)
		}
	})

	t.Run("own dates do not conflict with themselves", func(t *testing.T) {
		t.Parallel()

		repo := newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusDraft, date(2025, 3, 1), date(2025, 4, 1)))
		svc, _ := newTestService(repo, today)

		got, err := svc.UpdateBatch(context.Background(), "BAT001", domain.BatchPatch{
			Name:    ptr("Wave 1"),
			EndDate: ptr(date(2025, 4, 15)),
		}, "admin-1")
		if err != nil {
			t.Fatalf("UpdateBatch() error = %v", err)
		}
		if !got.EndDate.Equal(date(2025, 4, 15)) || got.Status != domain.BatchStatusDraft {
			t.Fatalf("got %+v, want draft ending 2025-04-15", got)
		}
	})

	t.Run("merged record is validated", func(t *testing.T) {
		t.Parallel()

		repo := newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusDraft, date(2025, 3, 1), date(2025, 4, 1)))
		svc, _ := newTestService(repo, today)

		_, err := svc.UpdateBatch(context.Background(), "BAT001", domain.BatchPatch{StartDate: ptr(date(2025, 5, 1))}, "admin-1")
		if code := domain.CodeOf(err); code != domain.CodeValidation {
			t.Fatalf("CodeOf(err) = %s, want VALIDATION_ERROR for start after stored end", code)
		}
	})

	t.Run("moving a closed batch end over today reopens it", func(t *testing.T) {
		t.Parallel()

		repo := newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusClosed, date(2025, 1, 1), date(2025, 2, 1)))
		svc, metrics := newTestService(repo, today)

		got, err := svc.UpdateBatch(context.Background(), "BAT001", domain.BatchPatch{EndDate: ptr(date(2025, 2, 28))}, "admin-1")
		if err != nil {
			t.Fatalf("UpdateBatch() error = %v", err)
		}
		if got.Status != domain.BatchStatusActive {
			t.Fatalf("status = %s, want active", got.Status)
		}
		if len(metrics.transitions) != 1 || metrics.transitions[0] != "closed->active" {
			t.Fatalf("transitions = %v, want [closed->active]", metrics.transitions)
		}
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(newMemBatchRepo(), today)
		_, err := svc.UpdateBatch(context.Background(), "BAT001", domain.BatchPatch{}, "admin-1")
		if code := domain.CodeOf(err); code != domain.CodeValidation {
			t.Fatalf("CodeOf(err) = %s, want VALIDATION_ERROR", code)
		}
	})

	t.Run("missing batch", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(newMemBatchRepo(), today)
		_, err := svc.UpdateBatch(context.Background(), "BAT404", domain.BatchPatch{Name: ptr("x")}, "admin-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteBatch(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(
		batchFixture("BAT001", "Wave 1", domain.BatchStatusActive, date(2025, 1, 1), date(2025, 3, 1)),
		batchFixture("BAT002", "Wave 2", domain.BatchStatusDraft, date(2025, 4, 1), date(2025, 5, 1)),
	)
	svc, _ := newTestService(repo, today)
	ctx := context.Background()

	err := svc.DeleteBatch(ctx, "BAT001", "admin-1")
	if code := domain.CodeOf(err); code != domain.CodeBusinessRule {
		t.Fatalf("delete active: CodeOf(err) = %s, want BUSINESS_RULE_VIOLATION", code)
	}
	if _, err := repo.GetByID(ctx, "BAT001"); err != nil {
		t.Fatal("active batch should survive a rejected delete")
	}

	if err := svc.DeleteBatch(ctx, "BAT002", "admin-1"); err != nil {
		t.Fatalf("delete draft error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "BAT002"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID after delete error = %v, want ErrNotFound", err)
	}

	if err := svc.DeleteBatch(ctx, "BAT002", "admin-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBatchReferencedByResponses(t *testing.T) {
	t.Parallel()

	repo := &deleteFailingRepo{
		memBatchRepo: newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1))),
	}
	svc, err := NewBatchService(repo, &fakeResponseRepo{}, nil, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewBatchService() error = %v", err)
	}

	err = svc.DeleteBatch(context.Background(), "BAT001", "admin-1")
	if code := domain.CodeOf(err); code != domain.CodeForeignKey {
		t.Fatalf("CodeOf(err) = %s, want FOREIGN_KEY_VIOLATION", code)
	}
}

type deleteFailingRepo struct {
	*memBatchRepo
}

func (r *deleteFailingRepo) Transaction(ctx context.Context, fn func(tx repository.BatchRepository) error) error {
	return r.memBatchRepo.Transaction(ctx, func(repository.BatchRepository) error {
		return fn(r)
	})
}

func (r *deleteFailingRepo) Delete(context.Context, string) error {
	return &repository.ConstraintError{Constraint: repository.ConstraintResponseFK, Err: domain.ErrForeignKey}
}

func TestListBatches(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(
		batchFixture("BAT001", "Wave 1", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1)),
		batchFixture("BAT002", "Wave 2", domain.BatchStatusActive, date(2025, 2, 1), date(2025, 2, 15)),
		batchFixture("BAT003", "Wave 3", domain.BatchStatusDraft, date(2025, 6, 1), date(2025, 7, 1)),
	)
	responses := &fakeResponseRepo{
		countsByBatchFn: func(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error) {
			return map[string]domain.ResponseCounts{
				"BAT002": {Total: 4, Validated: 3, Rejected: 1, UniqueRespondents: 4},
			}, nil
		},
		countEligibleYouthFn: func(ctx context.Context, ageMin, ageMax int) (int64, error) {
			return 16, nil
		},
	}
	svc, err := NewBatchService(repo, responses, nil, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewBatchService() error = %v", err)
	}
	svc.now = func() time.Time { return today }

	page, err := svc.ListBatches(context.Background(), ListBatchesQuery{
		ListParams:   repository.ListParams{Page: 1, PageSize: 2},
		IncludeStats: true,
	})
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}

	if page.Total != 3 || page.TotalPages != 2 || page.PageSize != 2 || len(page.Data) != 2 {
		t.Fatalf("page = %+v, want 2 of 3 rows over 2 pages", page)
	}

	closed, active := page.Data[0], page.Data[1]
	if closed.DaysRemaining != nil || closed.IsOverdue != nil {
		t.Fatal("daysRemaining/isOverdue should be set for active batches only")
	}
	if active.DaysRemaining == nil || *active.DaysRemaining != 5 || *active.IsOverdue {
		t.Fatalf("active view = %+v, want 5 days remaining", active)
	}
	if active.Statistics == nil || active.Statistics.ValidationRate != 75 || active.Statistics.CoverageRate != 25 {
		t.Fatalf("active statistics = %+v, want 75%% validated and 25%% coverage", active.Statistics)
	}
	if closed.Statistics == nil || closed.Statistics.Counts.Total != 0 {
		t.Fatalf("closed statistics = %+v, want zero counts", closed.Statistics)
	}
}

func TestListBatchesOverdueActiveBatch(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusActive, date(2025, 1, 1), date(2025, 2, 1)))
	svc, _ := newTestService(repo, today)

	page, err := svc.ListBatches(context.Background(), ListBatchesQuery{})
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if page.PageSize != repository.DefaultPageSize || page.Page != 1 {
		t.Fatalf("page = %d size = %d, want defaults", page.Page, page.PageSize)
	}
	view := page.Data[0]
	if *view.DaysRemaining != 0 || !*view.IsOverdue {
		t.Fatalf("view = %+v, want overdue with 0 days remaining", view)
	}
}

func TestListBatchesWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo()
	repo.listErr = errors.New("connection reset")
	svc, _ := newTestService(repo, today)

	_, err := svc.ListBatches(context.Background(), ListBatchesQuery{})
	if code := domain.CodeOf(err); code != domain.CodeGeneric {
		t.Fatalf("CodeOf(err) = %s, want GENERIC_ERROR", code)
	}
}

func TestBatchStatisticsAndResponses(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(batchFixture("BAT001", "Wave 1", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1)))
	var gotParams repository.ResponseListParams
	responses := &fakeResponseRepo{
		countsByBatchFn: func(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error) {
			if len(batchIDs) != 1 || batchIDs[0] != "BAT001" {
				return nil, fmt.Errorf("batchIDs = %v, want [BAT001]", batchIDs)
			}
			return map[string]domain.ResponseCounts{
				"BAT001": {Total: 3, Validated: 2, Rejected: 1, UniqueRespondents: 3},
			}, nil
		},
		countEligibleYouthFn: func(ctx context.Context, ageMin, ageMax int) (int64, error) {
			if ageMin != 15 || ageMax != 30 {
				return 0, fmt.Errorf("age range = %d-%d, want 15-30", ageMin, ageMax)
			}
			return 8, nil
		},
		listByBatchFn: func(ctx context.Context, batchID string, params repository.ResponseListParams) ([]domain.SurveyResponse, int64, error) {
			gotParams = params
			return []domain.SurveyResponse{{ID: "r1", BatchID: batchID}}, 21, nil
		},
	}
	svc, err := NewBatchService(repo, responses, nil, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewBatchService() error = %v", err)
	}
	ctx := context.Background()

	stats, err := svc.BatchStatistics(ctx, "BAT001")
	if err != nil {
		t.Fatalf("BatchStatistics() error = %v", err)
	}
	if stats.ValidationRate != 66.67 || stats.RejectionRate != 33.33 || stats.CoverageRate != 37.5 {
		t.Fatalf("stats = %+v", stats)
	}

	view, err := svc.GetBatch(ctx, "BAT001", true)
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if view.Statistics == nil || view.Statistics.EligibleYouth != 8 {
		t.Fatalf("GetBatch() statistics = %+v", view.Statistics)
	}

	page, err := svc.ListBatchResponses(ctx, "BAT001", repository.ResponseListParams{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("ListBatchResponses() error = %v", err)
	}
	if gotParams.PageSize != repository.MaxPageSize || page.TotalPages != 1 || page.Total != 21 {
		t.Fatalf("page = %+v params = %+v", page, gotParams)
	}

	if _, err := svc.ListBatchResponses(ctx, "BAT404", repository.ResponseListParams{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ListBatchResponses(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.BatchStatistics(ctx, "BAT404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("BatchStatistics(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDashboardCounts(t *testing.T) {
	t.Parallel()

	repo := newMemBatchRepo(
		batchFixture("BAT001", "Wave 1", domain.BatchStatusClosed, date(2024, 1, 1), date(2024, 2, 1)),
		batchFixture("BAT002", "Wave 2", domain.BatchStatusClosed, date(2024, 3, 1), date(2024, 4, 1)),
		batchFixture("BAT003", "Wave 3", domain.BatchStatusActive, date(2025, 2, 1), date(2025, 3, 1)),
		batchFixture("BAT004", "Wave 4", domain.BatchStatusDraft, date(2025, 6, 1), date(2025, 7, 1)),
	)
	svc, _ := newTestService(repo, today)

	counts, err := svc.DashboardCounts(context.Background())
	if err != nil {
		t.Fatalf("DashboardCounts() error = %v", err)
	}
	want := domain.DashboardCounts{Total: 4, Active: 1, Closed: 2, Draft: 1}
	if *counts != want {
		t.Fatalf("DashboardCounts() = %+v, want %+v", *counts, want)
	}
}

func TestNextBatchID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "empty store", want: "BAT001"},
		{name: "gaps use the maximum", existing: []string{"BAT001", "BAT005", "BAT003"}, want: "BAT006"},
		{name: "foreign ids ignored", existing: []string{"LEGACY-77", "BATX", "bat900", "BAT002"}, want: "BAT003"},
		{name: "width grows past 999", existing: []string{"BAT999"}, want: "BAT1000"},
		{name: "wide ids keep counting", existing: []string{"BAT1000", "BAT999"}, want: "BAT1001"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := nextBatchID(tt.existing); got != tt.want {
				t.Fatalf("nextBatchID(%v) = %s, want %s", tt.existing, got, tt.want)
			}
		})
	}
}
