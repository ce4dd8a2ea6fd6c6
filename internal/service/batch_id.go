package service

import "github.com/Honniee/YouthGovernanceWeb-sub004/internal/domain"

// nextBatchID returns the id after the highest BAT<digits> id in existing.
// Ids in any other shape are ignored.
func nextBatchID(existing []string) string {
	highest := 0
	for _, id := range existing {
		if n, ok := domain.ParseBatchSeq(id); ok && n > highest {
			highest = n
		}
	}
	return domain.FormatBatchID(highest + 1)
}
