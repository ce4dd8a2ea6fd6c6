package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
	"go.uber.org/zap"
)

// StatusOptions qualifies a status change request.
type StatusOptions struct {
	// Reason is required when pausing.
	Reason string
	// IsPause selects pause over resume for an active -> active request.
	IsPause bool
	// IsForce routes the request to ForceActivate.
	IsForce bool
	// EndDate is the new end date of a closed -> active extension.
	EndDate *time.Time
}

// SetBatchStatus applies one transition of the batch lifecycle:
//
//	draft  -> active  activation, gated on exclusivity
//	active -> active  pause or resume
//	active -> closed  end date clamped to today
//	closed -> active  extension; reopens only when the new window includes today
//
// Every other pair is a business-rule violation.
func (s *BatchService) SetBatchStatus(
	ctx context.Context,
	id string,
	target domain.BatchStatus,
	actorID string,
	opts StatusOptions,
) (*domain.SurveyBatch, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !target.IsValid() {
		return nil, s.reject(ctx, "set status", &domain.SurveyBatch{ID: id},
			fmt.Errorf("%w: invalid status %q", domain.ErrValidation, target))
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, s.reject(ctx, "set status", &domain.SurveyBatch{ID: id},
			fmt.Errorf("%w: acting user is required", domain.ErrValidation))
	}

	if opts.IsForce {
		if target != domain.BatchStatusActive {
			return nil, s.reject(ctx, "set status", &domain.SurveyBatch{ID: id},
				fmt.Errorf("%w: force mode can only activate a batch", domain.ErrBusinessRule))
		}
		return s.ForceActivate(ctx, id, actorID)
	}

	return s.mutateLifecycle(ctx, "set status", id, actorID, func(
		ctx context.Context,
		detector *ConflictDetector,
		current domain.SurveyBatch,
	) (domain.SurveyBatch, error) {
		return s.transition(ctx, detector, current, target, actorID, opts)
	})
}

// ForceActivate activates a batch outside the transition table. The global
// exclusivity gate still applies, a future start date is moved to today and
// the resulting window must not overlap another batch.
func (s *BatchService) ForceActivate(ctx context.Context, id string, actorID string) (*domain.SurveyBatch, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	return s.mutateLifecycle(ctx, "force activate", id, actorID, func(
		ctx context.Context,
		detector *ConflictDetector,
		current domain.SurveyBatch,
	) (domain.SurveyBatch, error) {
		if current.Status == domain.BatchStatusActive {
			return current, fmt.Errorf("%w: batch %s is already active", domain.ErrBusinessRule, current.Ref())
		}

		today := s.today()
		next := current
		if next.EndDate.Before(today) {
			return current, fmt.Errorf("%w: batch %s ended on %s and cannot be activated",
				domain.ErrBusinessRule, current.Ref(), next.EndDate.Format(time.DateOnly))
		}
		if next.StartDate.After(today) {
			next.StartDate = today
		}
		if !next.StartDate.Before(next.EndDate) {
			return current, fmt.Errorf("%w: batch %s has no remaining window to activate", domain.ErrBusinessRule, current.Ref())
		}

		if !next.StartDate.Equal(current.StartDate) {
			check, err := detector.DateRangeConflicts(ctx, next.StartDate, next.EndDate, next.ID)
			if err != nil {
				return current, err
			}
			if check.HasConflicts {
				return current, domain.NewDateConflict(check.Conflicts)
			}
		}

		active, err := detector.ActiveBatchExists(ctx, next.ID)
		if err != nil {
			return current, err
		}
		if active.Exists {
			return current, domain.NewActiveConflict(active.Conflicts)
		}

		next.Activate()
		return next, nil
	})
}

type lifecycleStep func(ctx context.Context, detector *ConflictDetector, current domain.SurveyBatch) (domain.SurveyBatch, error)

// mutateLifecycle runs step against the locked row and persists its result in one transaction.
func (s *BatchService) mutateLifecycle(
	ctx context.Context,
	op string,
	id string,
	actorID string,
	step lifecycleStep,
) (*domain.SurveyBatch, error) {
	var (
		current domain.SurveyBatch
		next    domain.SurveyBatch
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

		next, err = step(ctx, NewConflictDetector(tx), current)
		if err != nil {
			return err
		}
		return tx.UpdateLifecycle(ctx, &next)
	})
	if err != nil {
		subject := next
		if subject.ID == "" {
			subject = current
		}
		subject.ID = id
		return nil, s.reject(ctx, op, &subject, err)
	}

	s.afterCommit(ctx)
	s.metrics.IncTransition(current.Status.String(), next.Status.String())
	s.log(ctx).Info("batch status changed",
		zap.String("op", op),
		zap.String("batchId", id),
		zap.String("actorId", actorID),
		zap.String("from", current.Status.String()),
		zap.String("to", next.Status.String()),
		zap.Bool("paused", next.IsPaused()),
	)
	return &next, nil
}

func (s *BatchService) transition(
	ctx context.Context,
	detector *ConflictDetector,
	current domain.SurveyBatch,
	target domain.BatchStatus,
	actorID string,
	opts StatusOptions,
) (domain.SurveyBatch, error) {
	next := current
	from := current.Status

	switch {
	case from == domain.BatchStatusDraft && target == domain.BatchStatusActive:
		if err := s.gateActivation(ctx, detector, next); err != nil {
			return current, err
		}
		next.Activate()

	case from == domain.BatchStatusActive && target == domain.BatchStatusActive:
		now := s.now().UTC()
		if opts.IsPause {
			reason := strings.TrimSpace(opts.Reason)
			if reason == "" {
				return current, fmt.Errorf("%w: a reason is required to pause batch %s", domain.ErrBusinessRule, current.Ref())
			}
			if current.IsPaused() {
				return current, fmt.Errorf("%w: batch %s is already paused", domain.ErrBusinessRule, current.Ref())
			}
			next.Pause(actorID, reason, now)
		} else {
			if !current.IsPaused() {
				return current, fmt.Errorf("%w: batch %s is not paused", domain.ErrBusinessRule, current.Ref())
			}
			next.Resume(actorID, now)
		}

	case from == domain.BatchStatusActive && target == domain.BatchStatusClosed:
		next.Close(s.today())

	case from == domain.BatchStatusClosed && target == domain.BatchStatusActive:
		return s.extend(ctx, detector, current, opts.EndDate)

	default:
		return current, fmt.Errorf("%w: invalid status transition from %s to %s", domain.ErrBusinessRule, from, target)
	}

	return next, nil
}

// extend moves the end date of a closed batch. The batch reopens only when the
// new window includes today; otherwise it stays closed with the new end date.
func (s *BatchService) extend(
	ctx context.Context,
	detector *ConflictDetector,
	current domain.SurveyBatch,
	endDate *time.Time,
) (domain.SurveyBatch, error) {
	next := current
	if endDate != nil {
		next.EndDate = domain.DateOf(*endDate)
	}
	if !next.StartDate.Before(next.EndDate) {
		return current, fmt.Errorf("%w: extended end date %s must be after start date %s",
			domain.ErrBusinessRule, next.EndDate.Format(time.DateOnly), next.StartDate.Format(time.DateOnly))
	}

	check, err := detector.DateRangeConflicts(ctx, next.StartDate, next.EndDate, next.ID)
	if err != nil {
		return current, err
	}
	if check.HasConflicts {
		return current, domain.NewDateConflict(check.Conflicts)
	}

	if next.Includes(s.today()) {
		if err := s.gateActivation(ctx, detector, next); err != nil {
			return current, err
		}
		next.Activate()
	}
	return next, nil
}

// gateActivation is the last check before a batch becomes active: category
// exclusivity first, then the global single-active rule.
func (s *BatchService) gateActivation(ctx context.Context, detector *ConflictDetector, b domain.SurveyBatch) error {
	if b.Category.Exclusive() {
		check, err := detector.NamedCategoryActiveExists(ctx, b.Category, b.ID)
		if err != nil {
			return err
		}
		if check.Exists {
			return domain.NewCategoryConflict(b.Category, check.Conflicts)
		}
	}

	check, err := detector.ActiveBatchExists(ctx, b.ID)
	if err != nil {
		return err
	}
	if check.Exists {
		return domain.NewActiveConflict(check.Conflicts)
	}
	return nil
}
