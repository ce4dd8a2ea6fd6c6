package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// batchWriteLockKey is the pg_advisory_xact_lock key shared by every mutating batch transaction.
const batchWriteLockKey int64 = 0x5b47_4348

type BatchRepository interface {
	// Transaction runs fn against a repository bound to one database transaction.
	// Any error returned by fn rolls the whole transaction back.
	Transaction(ctx context.Context, fn func(tx BatchRepository) error) error
	// LockForWrite serializes mutating transactions until commit or rollback.
	LockForWrite(ctx context.Context) error

	Create(ctx context.Context, b *domain.SurveyBatch) error
	GetByID(ctx context.Context, id string) (*domain.SurveyBatch, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.SurveyBatch, error)
	ListIDs(ctx context.Context) ([]string, error)
	FindByNameKey(ctx context.Context, nameKey string, excludeID string) ([]domain.BatchRef, error)
	FindActive(ctx context.Context, category *domain.Category, excludeID string) ([]domain.BatchRef, error)
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]domain.BatchRef, error)
	UpdateDetails(ctx context.Context, b *domain.SurveyBatch) error
	UpdateLifecycle(ctx context.Context, b *domain.SurveyBatch) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]domain.SurveyBatch, int64, error)
	CountByStatus(ctx context.Context) (domain.DashboardCounts, error)
}

type GormBatchRepo struct {
	db *gorm.DB
}

func NewGormBatchRepo(db *gorm.DB) *GormBatchRepo {
	return &GormBatchRepo{db: db}
}

func (r *GormBatchRepo) Transaction(ctx context.Context, fn func(tx BatchRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBatchRepo{db: tx})
	})
	return translateError(err)
}

func (r *GormBatchRepo) LockForWrite(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", batchWriteLockKey).Error
}

func (r *GormBatchRepo) Create(ctx context.Context, b *domain.SurveyBatch) error {
	model := batchModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	if b != nil {
		*b = *batchModelToDomain(model)
	}
	return nil
}

func (r *GormBatchRepo) GetByID(ctx context.Context, id string) (*domain.SurveyBatch, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormBatchRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.SurveyBatch, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBatchRepo) get(db *gorm.DB, id string) (*domain.SurveyBatch, error) {
	var model SurveyBatchModel
	err := db.First(&model, "batch_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return batchModelToDomain(&model), nil
}

func (r *GormBatchRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Where("batch_id ~ ?", `^BAT[0-9]+$`).
		Pluck("batch_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormBatchRepo) FindByNameKey(ctx context.Context, nameKey string, excludeID string) ([]domain.BatchRef, error) {
	query := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Where("batch_name_key = ?", nameKey)
	return r.refs(excluding(query, excludeID))
}

func (r *GormBatchRepo) FindActive(ctx context.Context, category *domain.Category, excludeID string) ([]domain.BatchRef, error) {
	query := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Where("status = ?", domain.BatchStatusActive)
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	return r.refs(excluding(query, excludeID))
}

func (r *GormBatchRepo) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]domain.BatchRef, error) {
	query := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Where("NOT (end_date < ? OR start_date > ?)", domain.DateOf(start), domain.DateOf(end))
	return r.refs(excluding(query, excludeID))
}

func (r *GormBatchRepo) refs(query *gorm.DB) ([]domain.BatchRef, error) {
	var rows []SurveyBatchModel
	if err := query.Select("batch_id", "batch_name").Order("start_date ASC, batch_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]domain.BatchRef, 0, len(rows))
	for i := range rows {
		refs = append(refs, domain.BatchRef{ID: rows[i].BatchID, Name: rows[i].BatchName})
	}
	return refs, nil
}

func excluding(query *gorm.DB, excludeID string) *gorm.DB {
	if excludeID == "" {
		return query
	}
	return query.Where("batch_id <> ?", excludeID)
}

// UpdateDetails writes exactly the columns of domain.BatchPatch and touches updated_at.
func (r *GormBatchRepo) UpdateDetails(ctx context.Context, b *domain.SurveyBatch) error {
	return r.update(ctx, b.ID, map[string]any{
		"batch_name":     b.Name,
		"batch_name_key": domain.NameKey(b.Name),
		"description":    b.Description,
		"start_date":     domain.DateOf(b.StartDate),
		"end_date":       domain.DateOf(b.EndDate),
		"target_age_min": b.TargetAgeMin,
		"target_age_max": b.TargetAgeMax,
		"updated_at":     gorm.Expr("NOW()"),
	})
}

// UpdateLifecycle writes the status, window and pause/resume audit columns.
func (r *GormBatchRepo) UpdateLifecycle(ctx context.Context, b *domain.SurveyBatch) error {
	return r.update(ctx, b.ID, map[string]any{
		"status":        b.Status,
		"start_date":    domain.DateOf(b.StartDate),
		"end_date":      domain.DateOf(b.EndDate),
		"paused_at":     b.PausedAt,
		"paused_by":     b.PausedBy,
		"paused_reason": b.PausedReason,
		"resumed_at":    b.ResumedAt,
		"resumed_by":    b.ResumedBy,
		"updated_at":    gorm.Expr("NOW()"),
	})
}

func (r *GormBatchRepo) update(ctx context.Context, id string, columns map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Where("batch_id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBatchRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("batch_id = ?", id).
		Delete(&SurveyBatchModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBatchRepo) List(ctx context.Context, params ListParams) ([]domain.SurveyBatch, int64, error) {
	params = params.Normalized()
	query := r.db.WithContext(ctx).Model(&SurveyBatchModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.NameContains != "" {
		query = query.Where(`batch_name ILIKE ? ESCAPE '\'`, "%"+escapeLike(params.NameContains)+"%")
	}
	if params.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *params.CreatedFrom)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []SurveyBatchModel
	err := query.
		Order(params.OrderClause()).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	batches := make([]domain.SurveyBatch, 0, len(models))
	for i := range models {
		batches = append(batches, *batchModelToDomain(&models[i]))
	}

	return batches, total, nil
}

type statusCount struct {
	Status domain.BatchStatus `gorm:"column:status"`
	Count  int64              `gorm:"column:count"`
}

func (r *GormBatchRepo) CountByStatus(ctx context.Context) (domain.DashboardCounts, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&SurveyBatchModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.DashboardCounts{}, err
	}

	var counts domain.DashboardCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case domain.BatchStatusActive:
			counts.Active = row.Count
		case domain.BatchStatusClosed:
			counts.Closed = row.Count
		case domain.BatchStatusDraft:
			counts.Draft = row.Count
		}
	}
	return counts, nil
}
