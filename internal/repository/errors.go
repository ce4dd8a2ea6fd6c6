package repository

import (
	"errors"
	"fmt"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store-level guards created by the migrations.
const (
	ConstraintSingleActive = "ux_survey_batches_single_active"
	ConstraintNameKey      = "ux_survey_batches_name_key"
	ConstraintPrimaryKey   = "survey_batches_pkey"
	ConstraintWindow       = "ex_survey_batches_window"
	ConstraintDateOrder    = "ck_survey_batches_date_order"
	ConstraintAgeRange     = "ck_survey_batches_age_range"
	ConstraintPauseReason  = "ck_survey_batches_pause_reason"
	ConstraintResponseFK   = "fk_survey_responses_batch"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
	sqlStateExclusionViolation  = "23P01"
)

// ConstraintError is a store constraint violation translated into the domain taxonomy.
// Err carries the domain error; Constraint names the guard that fired.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Err.Error()
}

func (e *ConstraintError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsConstraint reports whether err was raised by the named store guard.
func IsConstraint(err error, constraint string) bool {
	var cerr *ConstraintError
	return errors.As(err, &cerr) && cerr.Constraint == constraint
}

// translateError converts integrity violations into domain errors and leaves
// everything else untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	constraint := pgErr.ConstraintName
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		switch constraint {
		case ConstraintSingleActive:
			return &ConstraintError{Constraint: constraint, Err: domain.NewActiveConflict(nil)}
		case ConstraintNameKey:
			return &ConstraintError{Constraint: constraint, Err: fmt.Errorf("%w: batch name already exists", domain.ErrDuplicateName)}
		case ConstraintPrimaryKey:
			return &ConstraintError{Constraint: constraint, Err: fmt.Errorf("%w: batch id already taken, retry the request", domain.ErrBusinessRule)}
		}
		return &ConstraintError{Constraint: constraint, Err: fmt.Errorf("%w: unique constraint %s", domain.ErrBusinessRule, constraint)}
	case sqlStateExclusionViolation:
		return &ConstraintError{Constraint: constraint, Err: domain.NewDateConflict(nil)}
	case sqlStateForeignKeyViolation:
		return &ConstraintError{Constraint: constraint, Err: fmt.Errorf("%w: batch is still referenced by survey responses", domain.ErrForeignKey)}
	case sqlStateCheckViolation:
		return &ConstraintError{Constraint: constraint, Err: fmt.Errorf("%w: check constraint %s", domain.ErrValidation, constraint)}
	}

	return err
}
