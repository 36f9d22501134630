package models

type ActionType string

const (
	ActionGameStart     ActionType = "game_start"
	ActionPipePassed    ActionType = "pipe_passed"
	ActionGiftCollected ActionType = "gift_collected"
	ActionGameOver      ActionType = "game_over"
)

// ActionPayload is the action as sent by the client.
type ActionPayload struct {
	Type            string   `json:"type"`
	Timestamp       *float64 `json:"timestamp"`
	PlayTimeSeconds *float64 `json:"playTimeSeconds,omitempty"`
}

type SubmitActionRequest struct {
	PlayerID  string         `json:"playerId"`
	SessionID string         `json:"sessionId"`
	Action    *ActionPayload `json:"action"`
}

// Action is one logged event. It is never updated once appended.
type Action struct {
	ID                string     `json:"id" bson:"_id"`
	PlayerID          string     `json:"playerId" bson:"playerId"`
	SessionID         string     `json:"sessionId" bson:"sessionId"`
	Attempt           int        `json:"attempt" bson:"attempt"`
	Type              ActionType `json:"type" bson:"type"`
	Timestamp         int64      `json:"timestamp" bson:"timestamp"`
	ServerReceivedAt  int64      `json:"serverReceivedAt" bson:"serverReceivedAt"`
	ServerProcessedAt int64      `json:"serverProcessedAt" bson:"serverProcessedAt"`
}
