package repository

import (
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
)

// SurveyBatchModel is the persistence model for the survey_batches table.
type SurveyBatchModel struct {
	BatchID      string             `gorm:"column:batch_id;type:varchar(20);primaryKey"`
	BatchName    string             `gorm:"column:batch_name;type:varchar(255);not null"`
	BatchNameKey string             `gorm:"column:batch_name_key;type:varchar(255);not null"`
	Description  *string            `gorm:"column:description;type:text"`
	Category     domain.Category    `gorm:"column:category;type:varchar(20);not null;default:'general'"`
	StartDate    time.Time          `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time          `gorm:"column:end_date;type:date;not null"`
	Status       domain.BatchStatus `gorm:"column:status;type:varchar(10);not null;default:'draft'"`
	TargetAgeMin int                `gorm:"column:target_age_min;not null;default:15"`
	TargetAgeMax int                `gorm:"column:target_age_max;not null;default:30"`
	CreatedBy    string             `gorm:"column:created_by;type:varchar(64);not null"`
	PausedAt     *time.Time         `gorm:"column:paused_at;type:timestamptz"`
	PausedBy     *string            `gorm:"column:paused_by;type:varchar(64)"`
	PausedReason *string            `gorm:"column:paused_reason;type:text"`
	ResumedAt    *time.Time         `gorm:"column:resumed_at;type:timestamptz"`
	ResumedBy    *string            `gorm:"column:resumed_by;type:varchar(64)"`
	CreatedAt    time.Time          `gorm:"column:created_at"`
	UpdatedAt    time.Time          `gorm:"column:updated_at"`
}

func (SurveyBatchModel) TableName() string {
	return "survey_batches"
}

// YouthProfileModel is the persistence model for youth_profiles.
type YouthProfileModel struct {
	YouthID   string    `gorm:"column:youth_id;type:uuid;primaryKey"`
	Age       int       `gorm:"column:age;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (YouthProfileModel) TableName() string {
	return "youth_profiles"
}

// SurveyResponseModel is the persistence model for survey_responses.
type SurveyResponseModel struct {
	ResponseID       string                  `gorm:"column:response_id;type:uuid;primaryKey"`
	BatchID          string                  `gorm:"column:batch_id;type:varchar(20);not null"`
	YouthID          string                  `gorm:"column:youth_id;type:uuid;not null"`
	ValidationStatus domain.ValidationStatus `gorm:"column:validation_status;type:varchar(20);not null;default:'pending'"`
	ValidatedBy      *string                 `gorm:"column:validated_by;type:varchar(64)"`
	ValidatedAt      *time.Time              `gorm:"column:validated_at;type:timestamptz"`
	CreatedAt        time.Time               `gorm:"column:created_at"`
}

func (SurveyResponseModel) TableName() string {
	return "survey_responses"
}

func batchModelFromDomain(b *domain.SurveyBatch) *SurveyBatchModel {
	if b == nil {
		return nil
	}

	return &SurveyBatchModel{
		BatchID:      b.ID,
		BatchName:    b.Name,
		BatchNameKey: domain.NameKey(b.Name),
		Description:  b.Description,
		Category:     b.Category,
		StartDate:    domain.DateOf(b.StartDate),
		EndDate:      domain.DateOf(b.EndDate),
		Status:       b.Status,
		TargetAgeMin: b.TargetAgeMin,
		TargetAgeMax: b.TargetAgeMax,
		CreatedBy:    b.CreatedBy,
		PausedAt:     b.PausedAt,
		PausedBy:     b.PausedBy,
		PausedReason: b.PausedReason,
		ResumedAt:    b.ResumedAt,
		ResumedBy:    b.ResumedBy,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func batchModelToDomain(m *SurveyBatchModel) *domain.SurveyBatch {
	if m == nil {
		return nil
	}

	return &domain.SurveyBatch{
		ID:           m.BatchID,
		Name:         m.BatchName,
		Description:  m.Description,
		Category:     m.Category,
		StartDate:    domain.DateOf(m.StartDate),
		EndDate:      domain.DateOf(m.EndDate),
		Status:       m.Status,
		TargetAgeMin: m.TargetAgeMin,
		TargetAgeMax: m.TargetAgeMax,
		CreatedBy:    m.CreatedBy,
		PausedAt:     m.PausedAt,
		PausedBy:     m.PausedBy,
		PausedReason: m.PausedReason,
		ResumedAt:    m.ResumedAt,
		ResumedBy:    m.ResumedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func responseModelToDomain(m *SurveyResponseModel) *domain.SurveyResponse {
	if m == nil {
		return nil
	}

	return &domain.SurveyResponse{
		ID:               m.ResponseID,
		BatchID:          m.BatchID,
		YouthID:          m.YouthID,
		ValidationStatus: m.ValidationStatus,
		ValidatedBy:      m.ValidatedBy,
		ValidatedAt:      m.ValidatedAt,
		CreatedAt:        m.CreatedAt,
	}
}
