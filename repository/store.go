// Package repository holds the document store behind the score service.
package repository

import (
	"context"
	"errors"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
)

var (
	// ErrNotFound is returned when a player or session document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrSessionEnded is returned by FinalizeSession when gameOverAt is already set.
	ErrSessionEnded = errors.New("session already ended")
)

// ActionQuery selects actions of one session attempt. An empty Type matches
// every type; From and To bound the client timestamp inclusively.
type ActionQuery struct {
	PlayerID  string
	SessionID string
	Attempt   int
	Type      models.ActionType
	From      *int64
	To        *int64
}

// Store is the document store contract. Every write touches a single
// document, and conditional writes are atomic per document.
type Store interface {
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	// RaiseBestScore writes p only if no player exists or its stored score is
	// lower than p.Score. It reports whether the write happened.
	RaiseBestScore(ctx context.Context, p *models.Player) (bool, error)
	// TopPlayers returns up to limit players with 0 < score <= maxScore,
	// highest score first.
	TopPlayers(ctx context.Context, limit, maxScore int) ([]models.Player, error)

	GetSession(ctx context.Context, playerID, sessionID string) (*models.Session, error)
	// PutSession creates or overwrites the session document.
	PutSession(ctx context.Context, s *models.Session) error
	// FinalizeSession sets gameOverAt and the final figures if the given
	// attempt is still open, or returns ErrSessionEnded.
	FinalizeSession(ctx context.Context, playerID, sessionID string, attempt int, res models.SessionResult) error

	AppendAction(ctx context.Context, a *models.Action) error
	CountActions(ctx context.Context, q ActionQuery) (int64, error)
	// LatestAction returns the action matching q with the greatest
	// serverReceivedAt, or ErrNotFound.
	LatestAction(ctx context.Context, q ActionQuery) (*models.Action, error)

	PutCheatRecord(ctx context.Context, r *models.CheatRecord) error
	ListCheatRecords(ctx context.Context, playerID string) ([]models.CheatRecord, error)

	Close(ctx context.Context) error
}
