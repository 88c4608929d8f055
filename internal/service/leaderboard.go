package service

import (
	"context"
	"sort"

	"github.com/yizeng/gab/gin/gorm/xp-engine/internal/domain"
)

type TotalsSource interface {
	Totals(ctx context.Context, seasonID *uint) ([]domain.RankedEntry, error)
}

// LeaderboardService ranks attendants by ledger totals. It never writes.
type LeaderboardService struct {
	ledger TotalsSource
}

func NewLeaderboardService(ledger TotalsSource) *LeaderboardService {
	return &LeaderboardService{
		ledger: ledger,
	}
}

// Rank orders attendants by total XP descending, ties broken by ascending
// attendant id, and numbers them from 1. A positive limit truncates the result.
func (s *LeaderboardService) Rank(ctx context.Context, seasonID *uint, limit int) ([]domain.RankedEntry, error) {
	entries, err := s.ledger.Totals(ctx, seasonID)
	if err != nil {
		return nil, storageError("aggregate leaderboard", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalXP != entries[j].TotalXP {
			return entries[i].TotalXP > entries[j].TotalXP
		}
		return entries[i].AttendantID < entries[j].AttendantID
	})
	for i := range entries {
		entries[i].Position = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []domain.RankedEntry{}
	}

	return entries, nil
}

// Position returns the attendant's 1-based rank, or 0 when they have no events
// in scope.
func (s *LeaderboardService) Position(ctx context.Context, seasonID *uint, attendantID uint) (int, error) {
	entries, err := s.Rank(ctx, seasonID, 0)
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		if e.AttendantID == attendantID {
			return e.Position, nil
		}
	}

	return 0, nil
}
