package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/repository"
)

// ActiveCheck is the result of an exclusivity scan.
type ActiveCheck struct {
	Exists    bool
	Conflicts []domain.BatchRef
}

// DateCheck is the result of a window overlap scan.
type DateCheck struct {
	HasConflicts bool
	Conflicts    []domain.BatchRef
}

// ConflictDetector runs the store-backed conflict scans. Bind it to the
// transaction-scoped repository so scans see the same snapshot as the write.
type ConflictDetector struct {
	batches repository.BatchRepository
}

func NewConflictDetector(batches repository.BatchRepository) *ConflictDetector {
	return &ConflictDetector{batches: batches}
}

func (d *ConflictDetector) ActiveBatchExists(ctx context.Context, excludeID string) (ActiveCheck, error) {
	refs, err := d.batches.FindActive(ctx, nil, excludeID)
	if err != nil {
		return ActiveCheck{}, fmt.Errorf("failed to scan active batches: %w", err)
	}
	return ActiveCheck{Exists: len(refs) > 0, Conflicts: refs}, nil
}

func (d *ConflictDetector) NamedCategoryActiveExists(
	ctx context.Context,
	category domain.Category,
	excludeID string,
) (ActiveCheck, error) {
	refs, err := d.batches.FindActive(ctx, &category, excludeID)
	if err != nil {
		return ActiveCheck{}, fmt.Errorf("failed to scan active %s batches: %w", category, err)
	}
	return ActiveCheck{Exists: len(refs) > 0, Conflicts: refs}, nil
}

// DateRangeConflicts lists every other batch, whatever its status, whose
// inclusive window overlaps [start, end].
func (d *ConflictDetector) DateRangeConflicts(
	ctx context.Context,
	start, end time.Time,
	excludeID string,
) (DateCheck, error) {
	refs, err := d.batches.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return DateCheck{}, fmt.Errorf("failed to scan overlapping batches: %w", err)
	}
	return DateCheck{HasConflicts: len(refs) > 0, Conflicts: refs}, nil
}
