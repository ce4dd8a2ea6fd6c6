package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/observability"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"go.uber.org/zap"
)

// StatsCache is the read-through cache in front of the statistics queries.
type StatsCache interface {
	Dashboard(ctx context.Context, load func(context.Context) (domain.DashboardCounts, error)) (domain.DashboardCounts, error)
	BatchStats(ctx context.Context, batchID string, load func(context.Context) (domain.BatchStatistics, error)) (domain.BatchStatistics, error)
	Invalidate(ctx context.Context) error
}

// Recorder receives lifecycle metrics.
type Recorder interface {
	IncTransition(from string, to string)
	IncRejection(code string)
	IncStoreConflict(constraint string)
}

type BatchService struct {
	batches   repository.BatchRepository
	responses repository.ResponseRepository
	cache     StatsCache
	metrics   Recorder
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

func NewBatchService(
	batches repository.BatchRepository,
	responses repository.ResponseRepository,
	cache StatsCache,
	metrics Recorder,
	location *time.Location,
	logger *zap.Logger,
) (*BatchService, error) {
	if batches == nil {
		return nil, fmt.Errorf("batch repository is required")
	}
	if responses == nil {
		return nil, fmt.Errorf("response repository is required")
	}
	if cache == nil {
		cache = uncachedStats{}
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchService{
		batches:   batches,
		responses: responses,
		cache:     cache,
		metrics:   metrics,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// BatchView is a batch plus the optional read-side figures callers may ask for.
type BatchView struct {
	domain.SurveyBatch
	Statistics *domain.BatchStatistics
	// DaysRemaining and IsOverdue are set for active batches only.
	DaysRemaining *int
	IsOverdue     *bool
}

type Page[T any] struct {
	Data       []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

type ListBatchesQuery struct {
	repository.ListParams
	IncludeStats bool
}

func (s *BatchService) CreateBatch(ctx context.Context, in domain.NewBatchInput) (*domain.SurveyBatch, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	candidate := in.Draft()
	err := s.batches.Transaction(ctx, func(tx repository.BatchRepository) error {
		if err := tx.LockForWrite(ctx); err != nil {
			return err
		}

		report, err := validateBatch(ctx, NewConflictDetector(tx), candidate, false, "")
		if err != nil {
			return err
		}
		if report != nil {
			return report
		}

		ids, err := tx.ListIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list batch ids: %w", err)
		}
		candidate.ID = nextBatchID(ids)

		return tx.Create(ctx, &candidate)
	})
	if err != nil {
		return nil, s.reject(ctx, "create", &candidate, err)
	}

	s.afterCommit(ctx)
	s.log(ctx).Info("batch created",
		zap.String("batchId", candidate.ID),
		zap.String("actorId", candidate.CreatedBy),
		zap.String("category", candidate.Category.String()),
	)
	return &candidate, nil
}

// UpdateBatch merges patch into the stored batch, validates the merged record and
// writes the patch columns. Moving the end date of a closed batch so its window
// includes today reopens it, subject to the activation gate.
func (s *BatchService) UpdateBatch(ctx context.Context, id string, patch domain.BatchPatch, actorID string) (*domain.SurveyBatch, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if patch.IsEmpty() {
		return nil, s.reject(ctx, "update", nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation))
	}

	var (
		current domain.SurveyBatch
		subject domain.SurveyBatch
		updated domain.SurveyBatch
	)
	err := s.batches.Transaction(ctx, func(tx repository.BatchRepository) error {
		if err := tx.LockForWrite(ctx); err != nil {
			return err
		}
		stored, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		current = *stored

		merged := patch.Apply(current)
		subject = merged
		detector := NewConflictDetector(tx)
		report, err := validateBatch(ctx, detector, merged, true, id)
		if err != nil {
			return err
		}
		if report != nil {
			return report
		}

		if current.Status == domain.BatchStatusClosed && patch.EndDate != nil &&
			!merged.EndDate.Equal(current.EndDate) && merged.Includes(s.today()) {
			if err := s.gateActivation(ctx, detector, merged); err != nil {
				return err
			}
			merged.Activate()
		}

		if err := tx.UpdateDetails(ctx, &merged); err != nil {
			return err
		}
		if merged.Status != current.Status {
			if err := tx.UpdateLifecycle(ctx, &merged); err != nil {
				return err
			}
		}

		fresh, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated = *fresh
		return nil
	})
	if err != nil {
		if subject.ID == "" {
			subject = current
		}
		if subject.ID == "" {
			subject.ID = id
		}
		return nil, s.reject(ctx, "update", &subject, err)
	}

	s.afterCommit(ctx)
	if updated.Status != current.Status {
		s.metrics.IncTransition(current.Status.String(), updated.Status.String())
		s.log(ctx).Info("closed batch reopened by end date extension",
			zap.String("batchId", id),
			zap.String("actorId", actorID),
			zap.String("from", current.Status.String()),
			zap.String("to", updated.Status.String()),
		)
	}
	s.log(ctx).Info("batch updated", zap.String("batchId", id), zap.String("actorId", actorID))
	return &updated, nil
}

func (s *BatchService) DeleteBatch(ctx context.Context, id string, actorID string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var current domain.SurveyBatch
	err := s.batches.Transaction(ctx, func(tx repository.BatchRepository) error {
		if err := tx.LockForWrite(ctx); err != nil {
			return err
		}
		stored, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		current = *stored

		if current.Status == domain.BatchStatusActive {
			return fmt.Errorf("%w: batch %s is active, close it first", domain.ErrBusinessRule, current.Ref())
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		current.ID = id
		return s.reject(ctx, "delete", &current, err)
	}

	s.afterCommit(ctx)
	s.log(ctx).Info("batch deleted", zap.String("batchId", id), zap.String("actorId", actorID))
	return nil
}

func (s *BatchService) GetBatch(ctx context.Context, id string, includeStats bool) (*BatchView, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, s.readError("get", err)
	}

	view := s.viewOf(*batch)
	if includeStats {
		stats, err := s.BatchStatistics(ctx, id)
		if err != nil {
			return nil, err
		}
		view.Statistics = stats
	}
	return &view, nil
}

func (s *BatchService) ListBatches(ctx context.Context, query ListBatchesQuery) (*Page[BatchView], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	params := query.ListParams.Normalized()
	batches, total, err := s.batches.List(ctx, params)
	if err != nil {
		return nil, s.readError("list", err)
	}

	views := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, s.viewOf(b))
	}

	if query.IncludeStats && len(batches) > 0 {
		stats, err := s.statisticsFor(ctx, batches)
		if err != nil {
			return nil, s.readError("list", err)
		}
		for i := range views {
			st := stats[views[i].ID]
			views[i].Statistics = &st
		}
	}

	return &Page[BatchView]{
		Data:       views,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: repository.TotalPages(total, params.PageSize),
	}, nil
}

func (s *BatchService) ListBatchResponses(
	ctx context.Context,
	batchID string,
	params repository.ResponseListParams,
) (*Page[domain.SurveyResponse], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.batches.GetByID(ctx, batchID); err != nil {
		return nil, s.readError("list responses", err)
	}

	params = params.Normalized()
	responses, total, err := s.responses.ListByBatch(ctx, batchID, params)
	if err != nil {
		return nil, s.readError("list responses", err)
	}

	return &Page[domain.SurveyResponse]{
		Data:       responses,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: repository.TotalPages(total, params.PageSize),
	}, nil
}

func (s *BatchService) BatchStatistics(ctx context.Context, id string) (*domain.BatchStatistics, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := s.cache.BatchStats(ctx, id, func(ctx context.Context) (domain.BatchStatistics, error) {
		batch, err := s.batches.GetByID(ctx, id)
		if err != nil {
			return domain.BatchStatistics{}, err
		}
		all, err := s.statisticsFor(ctx, []domain.SurveyBatch{*batch})
		if err != nil {
			return domain.BatchStatistics{}, err
		}
		return all[id], nil
	})
	if err != nil {
		return nil, s.readError("statistics", err)
	}
	return &stats, nil
}

func (s *BatchService) DashboardCounts(ctx context.Context) (*domain.DashboardCounts, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	counts, err := s.cache.Dashboard(ctx, s.batches.CountByStatus)
	if err != nil {
		return nil, s.readError("dashboard", err)
	}
	return &counts, nil
}

func (s *BatchService) viewOf(b domain.SurveyBatch) BatchView {
	view := BatchView{SurveyBatch: b}
	if b.Status != domain.BatchStatusActive {
		return view
	}

	days := domain.DaysBetween(s.today(), b.EndDate)
	overdue := days < 0
	remaining := max(days, 0)
	view.DaysRemaining = &remaining
	view.IsOverdue = &overdue
	return view
}

func (s *BatchService) today() time.Time {
	return domain.Today(s.now(), s.location)
}

func (s *BatchService) log(ctx context.Context) *zap.Logger {
	return observability.WithContextLogger(s.logger, ctx)
}

// afterCommit drops cached statistics. A failure only costs staleness up to the cache TTL.
func (s *BatchService) afterCommit(ctx context.Context) {
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.log(ctx).Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *BatchService) readError(op string, err error) error {
	if domain.CodeOf(err) != domain.CodeGeneric {
		return err
	}
	return fmt.Errorf("failed to %s batches: %w", op, err)
}

// reject classifies a failed mutation. Domain errors are returned as they are and
// counted by code; store constraint violations are re-described with the batches
// they collided with; anything else is wrapped and logged as an internal error.
func (s *BatchService) reject(ctx context.Context, op string, batch *domain.SurveyBatch, err error) error {
	batchID := ""
	if batch != nil {
		batchID = batch.ID
	}
	logger := s.log(ctx).With(zap.String("op", op), zap.String("batchId", batchID))

	var cerr *repository.ConstraintError
	if errors.As(err, &cerr) {
		s.metrics.IncStoreConflict(cerr.Constraint)
		logger.Warn("store constraint rejected batch write", zap.String("constraint", cerr.Constraint), zap.Error(err))
		err = s.describeConstraint(ctx, cerr, batch)
	}

	code := domain.CodeOf(err)
	if code == domain.CodeGeneric {
		logger.Error("batch operation failed", zap.Error(err))
		return fmt.Errorf("failed to %s batch: %w", op, err)
	}

	s.metrics.IncRejection(code.String())
	logger.Info("batch operation rejected", zap.String("code", code.String()), zap.Error(err))
	return err
}

// describeConstraint names the batches behind a constraint violation. The lookups
// run outside the failed transaction, after the winning write has committed.
func (s *BatchService) describeConstraint(ctx context.Context, cerr *repository.ConstraintError, batch *domain.SurveyBatch) error {
	excludeID := ""
	if batch != nil {
		excludeID = batch.ID
	}

	var (
		refs []domain.BatchRef
		err  error
	)
	switch cerr.Constraint {
	case repository.ConstraintSingleActive:
		refs, err = s.batches.FindActive(ctx, nil, excludeID)
		if err == nil {
			return domain.NewActiveConflict(refs)
		}
	case repository.ConstraintWindow:
		if batch == nil {
			return cerr
		}
		refs, err = s.batches.FindOverlapping(ctx, batch.StartDate, batch.EndDate, excludeID)
		if err == nil {
			return domain.NewDateConflict(refs)
		}
	case repository.ConstraintNameKey:
		if batch == nil {
			return cerr
		}
		refs, err = s.batches.FindByNameKey(ctx, domain.NameKey(batch.Name), excludeID)
		if err == nil && len(refs) > 0 {
			report := &domain.ValidationError{}
			report.Add(domain.CodeDuplicateName, "batchName",
				fmt.Sprintf("batch name %q is already used by %s", strings.TrimSpace(batch.Name), refs[0]), refs...)
			return report
		}
	default:
		return cerr
	}

	if err != nil {
		s.logger.Warn("failed to look up conflicting batches", zap.String("constraint", cerr.Constraint), zap.Error(err))
	}
	return cerr
}

type uncachedStats struct{}

func (uncachedStats) Dashboard(
	ctx context.Context,
	load func(context.Context) (domain.DashboardCounts, error),
) (domain.DashboardCounts, error) {
	return load(ctx)
}

func (uncachedStats) BatchStats(
	ctx context.Context,
	_ string,
	load func(context.Context) (domain.BatchStatistics, error),
) (domain.BatchStatistics, error) {
	return load(ctx)
}

func (uncachedStats) Invalidate(context.Context) error { return nil }

type noopRecorder struct{}

func (noopRecorder) IncTransition(string, string) {}
func (noopRecorder) IncRejection(string)          {}
func (noopRecorder) IncStoreConflict(string)      {}
