package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"
	"golang.org/x/sync/errgroup"
)

type ageRange struct {
	min int
	max int
}

// statisticsFor rolls up response counts for batches and measures coverage
// against the youth population inside each batch's age range. The count query
// and one eligible-youth query per distinct age range run concurrently.
func (s *BatchService) statisticsFor(ctx context.Context, batches []domain.SurveyBatch) (map[string]domain.BatchStatistics, error) {
	ids := make([]string, 0, len(batches))
	seen := make(map[ageRange]bool)
	var ranges []ageRange
	for _, b := range batches {
		ids = append(ids, b.ID)
		r := ageRange{min: b.TargetAgeMin, max: b.TargetAgeMax}
		if !seen[r] {
			seen[r] = true
			ranges = append(ranges, r)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	var counts map[string]domain.ResponseCounts
	g.Go(func() error {
		var err error
		counts, err = s.responses.CountsByBatch(gctx, ids)
		if err != nil {
			return fmt.Errorf("failed to count responses: %w", err)
		}
		return nil
	})

	var mu sync.Mutex
	eligibleByRange := make(map[ageRange]int64, len(ranges))
	for _, r := range ranges {
		g.Go(func() error {
			eligible, err := s.responses.CountEligibleYouth(gctx, r.min, r.max)
			if err != nil {
				return fmt.Errorf("failed to count eligible youth aged %d-%d: %w", r.min, r.max, err)
			}
			mu.Lock()
			eligibleByRange[r] = eligible
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make(map[string]domain.BatchStatistics, len(batches))
	for _, b := range batches {
		eligible := eligibleByRange[ageRange{min: b.TargetAgeMin, max: b.TargetAgeMax}]
		stats[b.ID] = domain.NewBatchStatistics(b.ID, counts[b.ID], eligible)
	}
	return stats, nil
}
