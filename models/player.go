package models

// Player is the best-known result for one 4-digit player ID.
type Player struct {
	PlayerID            string  `json:"playerId" bson:"_id"`
	Score               int     `json:"score" bson:"score"`
	PipesPassed         int64   `json:"pipesPassed" bson:"pipesPassed"`
	GiftsReceived       int64   `json:"giftsReceived" bson:"giftsReceived"`
	PlayTimeSeconds     float64 `json:"playTimeSeconds" bson:"playTimeSeconds"`
	LastSessionID       string  `json:"lastSessionId" bson:"lastSessionId"`
	LastActionType      string  `json:"lastActionType" bson:"lastActionType"`
	LastActionTimestamp int64   `json:"lastActionTimestamp" bson:"lastActionTimestamp"`
	UpdatedAt           int64   `json:"updatedAt" bson:"updatedAt"`
}

type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}
