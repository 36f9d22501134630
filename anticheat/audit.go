package anticheat

import (
	"context"
	"log"
	"time"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/repository"
)

// Auditor writes rejected sessions to the quarantine collection. It never
// fails the caller: a write error is only logged.
type Auditor struct {
	store   repository.Store
	timeout time.Duration
}

func NewAuditor(store repository.Store, timeout time.Duration) *Auditor {
	return &Auditor{store: store, timeout: timeout}
}

func (a *Auditor) Quarantine(ctx context.Context, rec *models.CheatRecord) {
	_, err := withTimeout(ctx, a.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.store.PutCheatRecord(ctx, rec)
	})
	if err != nil {
		log.Printf("[anticheat] Warning: could not quarantine %s/%s (%s): %v", rec.PlayerID, rec.SessionID, rec.RejectionReason, err)
		return
	}
	log.Printf("[anticheat] Quarantined %s/%s: %s", rec.PlayerID, rec.SessionID, rec.RejectionReason)
}

func newCheatRecord(sub *submission, stats Stats, score int, v *Violation) *models.CheatRecord {
	return &models.CheatRecord{
		PlayerID:           sub.playerID,
		SessionID:          sub.sessionID,
		UID:                sub.uid,
		Attempt:            sub.session.Attempt,
		ComputedScore:      score,
		PipesCount:         stats.Pipes,
		GiftsCount:         stats.Gifts,
		TotalActions:       stats.Total,
		GameDurationMs:     stats.GameDurationMs,
		ReportedDurationMs: stats.ReportedDurationMs,
		RejectionReason:    v.Reason,
		Message:            v.Message,
		Details:            v.Details,
		RejectedAt:         sub.now,
	}
}
