package models

// CheatRecord is the quarantine copy of a session rejected at game_over.
type CheatRecord struct {
	PlayerID           string             `json:"playerId" bson:"playerId"`
	SessionID          string             `json:"sessionId" bson:"sessionId"`
	UID                string             `json:"uid" bson:"uid"`
	Attempt            int                `json:"attempt" bson:"attempt"`
	ComputedScore      int                `json:"computedScore" bson:"computedScore"`
	PipesCount         int64              `json:"pipesCount" bson:"pipesCount"`
	GiftsCount         int64              `json:"giftsCount" bson:"giftsCount"`
	TotalActions       int64              `json:"totalActions" bson:"totalActions"`
	GameDurationMs     int64              `json:"gameDurationMs" bson:"gameDurationMs"`
	ReportedDurationMs float64            `json:"reportedDurationMs" bson:"reportedDurationMs"`
	RejectionReason    string             `json:"rejectionReason" bson:"rejectionReason"`
	Message            string             `json:"message" bson:"message"`
	Details            map[string]float64 `json:"details,omitempty" bson:"details,omitempty"`
	RejectedAt         int64              `json:"rejectedAt" bson:"rejectedAt"`
}
