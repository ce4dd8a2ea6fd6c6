package repository

import (
	"context"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	CountsByBatch(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error)
	ListByBatch(ctx context.Context, batchID string, params ResponseListParams) ([]domain.SurveyResponse, int64, error)
	CountEligibleYouth(ctx context.Context, ageMin, ageMax int) (int64, error)
}

type GormResponseRepo struct {
	db *gorm.DB
}

func NewGormResponseRepo(db *gorm.DB) *GormResponseRepo {
	return &GormResponseRepo{db: db}
}

type responseCountsRow struct {
	BatchID           string `gorm:"column:batch_id"`
	Total             int64  `gorm:"column:total"`
	Validated         int64  `gorm:"column:validated"`
	Rejected          int64  `gorm:"column:rejected"`
	Pending           int64  `gorm:"column:pending"`
	UniqueRespondents int64  `gorm:"column:unique_respondents"`
}

func (r *GormResponseRepo) CountsByBatch(ctx context.Context, batchIDs []string) (map[string]domain.ResponseCounts, error) {
	counts := make(map[string]domain.ResponseCounts, len(batchIDs))
	if len(batchIDs) == 0 {
		return counts, nil
	}

	var rows []responseCountsRow
	err := r.db.WithContext(ctx).
		Model(&SurveyResponseModel{}).
		Select(`batch_id,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE validation_status = ?) AS validated,
			COUNT(*) FILTER (WHERE validation_status = ?) AS rejected,
			COUNT(*) FILTER (WHERE validation_status = ?) AS pending,
			COUNT(DISTINCT youth_id) AS unique_respondents`,
			domain.ValidationValidated, domain.ValidationRejected, domain.ValidationPending).
		Where("batch_id IN ?", batchIDs).
		Group("batch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.BatchID] = domain.ResponseCounts{
			Total:             row.Total,
			Validated:         row.Validated,
			Rejected:          row.Rejected,
			Pending:           row.Pending,
			UniqueRespondents: row.UniqueRespondents,
		}
	}
	return counts, nil
}

func (r *GormResponseRepo) ListByBatch(
	ctx context.Context,
	batchID string,
	params ResponseListParams,
) ([]domain.SurveyResponse, int64, error) {
	params = params.Normalized()
	query := r.db.WithContext(ctx).
		Model(&SurveyResponseModel{}).
		Where("batch_id = ?", batchID)

	if params.ValidationStatus != nil {
		query = query.Where("validation_status = ?", *params.ValidationStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []SurveyResponseModel
	err := query.
		Order("created_at DESC, response_id ASC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.SurveyResponse, 0, len(models))
	for i := range models {
		responses = append(responses, *responseModelToDomain(&models[i]))
	}
	return responses, total, nil
}

func (r *GormResponseRepo) CountEligibleYouth(ctx context.Context, ageMin, ageMax int) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&YouthProfileModel{}).
		Where("age BETWEEN ? AND ?", ageMin, ageMax).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
