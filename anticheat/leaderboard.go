package anticheat

import (
	"context"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

// PlayerScore returns the stored best score, or 0 for an unknown player.
func (s *Service) PlayerScore(ctx context.Context, rawPlayerID string) (int, error) {
	playerID, err := ParsePlayerID(rawPlayerID)
	if err != nil {
		return 0, err
	}
	return s.bestScore(ctx, playerID)
}

// TopPlayers returns up to n players by score, highest first. The store drops
// non-positive and out-of-range scores; malformed player IDs are dropped here.
func (s *Service) TopPlayers(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	n = min(n, maxLeaderboardSize)

	players, err := withTimeout(ctx, s.timeout, func(ctx context.Context) ([]models.Player, error) {
		return s.store.TopPlayers(ctx, n+leaderboardSlack, s.policy.scoreCap())
	})
	if err != nil {
		return nil, internalError("load leaderboard", err)
	}

	entries := make([]models.LeaderboardEntry, 0, n)
	for _, p := range players {
		if len(entries) == n {
			break
		}
		if _, err := ParsePlayerID(p.PlayerID); err != nil {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{PlayerID: p.PlayerID, Score: p.Score})
	}
	return entries, nil
}

// CheatRecords lists the quarantined sessions of a player, newest first.
func (s *Service) CheatRecords(ctx context.Context, rawPlayerID string) ([]models.CheatRecord, error) {
	playerID, err := ParsePlayerID(rawPlayerID)
	if err != nil {
		return nil, err
	}
	records, err := withTimeout(ctx, s.timeout, func(ctx context.Context) ([]models.CheatRecord, error) {
		return s.store.ListCheatRecords(ctx, playerID)
	})
	if err != nil {
		return nil, internalError("load cheat records", err)
	}
	return records, nil
}
