package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 2000
)

var fieldRules = validator.New(validator.WithRequiredStructEnabled())

// batchFields holds the field-level rules of a candidate batch.
type batchFields struct {
	Name         string    `validate:"required,max=255"`
	Description  *string   `validate:"omitempty,max=2000"`
	Category     string    `validate:"oneof=general kk_profiling"`
	StartDate    time.Time `validate:"required"`
	EndDate      time.Time `validate:"required,gtfield=StartDate"`
	TargetAgeMin int       `validate:"gte=15,lte=30"`
	TargetAgeMax int       `validate:"gte=15,lte=30,gtfield=TargetAgeMin"`
	CreatedBy    string    `validate:"required"`
}

func fieldsOf(b domain.SurveyBatch) batchFields {
	return batchFields{
		Name:         b.Name,
		Description:  b.Description,
		Category:     b.Category.String(),
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		TargetAgeMin: b.TargetAgeMin,
		TargetAgeMax: b.TargetAgeMax,
		CreatedBy:    b.CreatedBy,
	}
}

// fieldFailures runs the tag rules once and indexes failures by struct field.
func fieldFailures(b domain.SurveyBatch) (map[string]validator.FieldError, error) {
	failures := make(map[string]validator.FieldError)
	err := fieldRules.Struct(fieldsOf(b))
	if err == nil {
		return failures, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to run field rules: %w", err)
	}
	for _, fe := range fieldErrs {
		failures[fe.StructField()] = fe
	}
	return failures, nil
}

// validateBatch evaluates every rule against candidate and returns all failures together.
// Rule order: name, date presence, date order and overlaps, age range, category exclusivity.
// The returned report is nil when the candidate is valid; err is reserved for store failures.
func validateBatch(
	ctx context.Context,
	detector *ConflictDetector,
	candidate domain.SurveyBatch,
	isUpdate bool,
	currentID string,
) (*domain.ValidationError, error) {
	failures, err := fieldFailures(candidate)
	if err != nil {
		return nil, err
	}

	excludeID := ""
	if isUpdate {
		excludeID = currentID
	}

	report := &domain.ValidationError{}

	switch fe := failures["Name"]; {
	case fe != nil && fe.Tag() == "required":
		report.Add(domain.CodeValidation, "batchName", "batch name is required")
	case fe != nil:
		report.Add(domain.CodeValidation, "batchName", fmt.Sprintf("batch name must be at most %d characters", maxNameLength))
	}
	if candidate.Name != "" {
		dupes, err := detector.batches.FindByNameKey(ctx, domain.NameKey(candidate.Name), excludeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check batch name: %w", err)
		}
		if len(dupes) > 0 {
			report.Add(domain.CodeDuplicateName, "batchName",
				fmt.Sprintf("batch name %q is already used by %s", candidate.Name, dupes[0]), dupes...)
		}
	}

	if failures["Description"] != nil {
		report.Add(domain.CodeValidation, "description", fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}

	if candidate.StartDate.IsZero() {
		report.Add(domain.CodeValidation, "startDate", "start date is required")
	}
	if candidate.EndDate.IsZero() {
		report.Add(domain.CodeValidation, "endDate", "end date is required")
	}

	if !candidate.StartDate.IsZero() && !candidate.EndDate.IsZero() {
		if failures["EndDate"] != nil {
			report.Add(domain.CodeValidation, "endDate", "end date must be after start date")
		} else {
			check, err := detector.DateRangeConflicts(ctx, candidate.StartDate, candidate.EndDate, excludeID)
			if err != nil {
				return nil, err
			}
			for _, ref := range check.Conflicts {
				report.Add(domain.CodeDateConflict, "startDate", domain.NewDateConflict([]domain.BatchRef{ref}).Message, ref)
			}
		}
	}

	if fe := failures["TargetAgeMin"]; fe != nil {
		report.Add(domain.CodeValidation, "targetAgeMin",
			fmt.Sprintf("minimum target age must be between %d and %d", domain.MinTargetAge, domain.MaxTargetAge))
	}
	if fe := failures["TargetAgeMax"]; fe != nil {
		if fe.Tag() == "gtfield" {
			report.Add(domain.CodeValidation, "targetAgeMax", "maximum target age must be greater than minimum target age")
		} else {
			report.Add(domain.CodeValidation, "targetAgeMax",
				fmt.Sprintf("maximum target age must be between %d and %d", domain.MinTargetAge, domain.MaxTargetAge))
		}
	}

	if failures["Category"] != nil {
		report.Add(domain.CodeValidation, "category", fmt.Sprintf("unknown batch category %q", candidate.Category))
	} else if candidate.Category.Exclusive() {
		check, err := detector.NamedCategoryActiveExists(ctx, candidate.Category, excludeID)
		if err != nil {
			return nil, err
		}
		if check.Exists {
			report.Add(domain.CodeBusinessRule, "category",
				domain.NewCategoryConflict(candidate.Category, check.Conflicts).Message, check.Conflicts...)
		}
	}

	if failures["CreatedBy"] != nil {
		report.Add(domain.CodeValidation, "createdBy", "acting user is required")
	}

	if !report.HasProblems() {
		return nil, nil
	}
	return report, nil
}
