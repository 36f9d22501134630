package anticheat

import (
	"math"
	"regexp"
	"strings"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

const (
	maxSessionIDLength = 100
	// A day of play; anything longer is not a real game.
	maxPlayTimeSeconds = 24 * 60 * 60
)

var playerIDPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Action is a validated gameplay event. Only the four types below implement it.
type Action interface {
	Type() models.ActionType
	ClientTimestamp() int64
	isAction()
}

type GameStart struct {
	Timestamp int64
}

type PipePassed struct {
	Timestamp int64
}

type GiftCollected struct {
	Timestamp int64
}

type GameOver struct {
	Timestamp       int64
	PlayTimeSeconds float64
}

func (GameStart) Type() models.ActionType     { return models.ActionGameStart }
func (PipePassed) Type() models.ActionType    { return models.ActionPipePassed }
func (GiftCollected) Type() models.ActionType { return models.ActionGiftCollected }
func (GameOver) Type() models.ActionType      { return models.ActionGameOver }

func (a GameStart) ClientTimestamp() int64     { return a.Timestamp }
func (a PipePassed) ClientTimestamp() int64    { return a.Timestamp }
func (a GiftCollected) ClientTimestamp() int64 { return a.Timestamp }
func (a GameOver) ClientTimestamp() int64      { return a.Timestamp }

func (GameStart) isAction()     {}
func (PipePassed) isAction()    {}
func (GiftCollected) isAction() {}
func (GameOver) isAction()      {}

// ParsePlayerID trims surrounding whitespace and requires exactly four digits.
func ParsePlayerID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !playerIDPattern.MatchString(trimmed) {
		return "", responses.InvalidArgumentError{Msg: "Invalid player ID"}
	}
	return trimmed, nil
}

func ParseSessionID(raw string) (string, error) {
	if raw == "" || len(raw) > maxSessionIDLength {
		return "", responses.InvalidArgumentError{Msg: "Invalid sessionId"}
	}
	return raw, nil
}

// ParseAction turns a client payload into one of the Action types.
// Timestamps are milliseconds; a fractional part is dropped.
func ParseAction(p *models.ActionPayload) (Action, error) {
	invalid := responses.InvalidArgumentError{Msg: "Invalid action format"}
	if p == nil {
		return nil, invalid
	}

	ts, ok := positiveMillis(p.Timestamp)
	if !ok {
		return nil, invalid
	}

	switch models.ActionType(p.Type) {
	case models.ActionGameStart:
		return GameStart{Timestamp: ts}, nil
	case models.ActionPipePassed:
		return PipePassed{Timestamp: ts}, nil
	case models.ActionGiftCollected:
		return GiftCollected{Timestamp: ts}, nil
	case models.ActionGameOver:
		if p.PlayTimeSeconds == nil || !finite(*p.PlayTimeSeconds) || *p.PlayTimeSeconds < 0 || *p.PlayTimeSeconds > maxPlayTimeSeconds {
			return nil, invalid
		}
		return GameOver{Timestamp: ts, PlayTimeSeconds: *p.PlayTimeSeconds}, nil
	default:
		return nil, invalid
	}
}

func positiveMillis(v *float64) (int64, bool) {
	if v == nil || !finite(*v) || *v <= 0 || *v > math.MaxInt64 {
		return 0, false
	}
	ms := int64(*v)
	return ms, ms > 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
