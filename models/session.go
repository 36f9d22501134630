package models

// Session is one play attempt of a player. Times are unix milliseconds;
// StartedAt is on the client game clock, everything else on the server clock.
type Session struct {
	PlayerID           string `json:"playerId" bson:"playerId"`
	SessionID          string `json:"sessionId" bson:"sessionId"`
	UID                string `json:"uid" bson:"uid"`
	Attempt            int    `json:"attempt" bson:"attempt"`
	StartedAt          int64  `json:"startedAt" bson:"startedAt"`
	CreatedAt          int64  `json:"createdAt" bson:"createdAt"`
	GameOverAt         *int64 `json:"gameOverAt" bson:"gameOverAt"`
	FinalScore         int    `json:"finalScore,omitempty" bson:"finalScore,omitempty"`
	FinalPipesPassed   int64  `json:"finalPipesPassed,omitempty" bson:"finalPipesPassed,omitempty"`
	FinalGiftsReceived int64  `json:"finalGiftsReceived,omitempty" bson:"finalGiftsReceived,omitempty"`
}

func (s *Session) Ended() bool {
	return s.GameOverAt != nil
}

// SessionResult holds the fields written together with gameOverAt.
type SessionResult struct {
	GameOverAt         int64
	FinalScore         int
	FinalPipesPassed   int64
	FinalGiftsReceived int64
}
