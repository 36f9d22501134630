package handlers

import (
	"time"

	"github.com/mapleleafu/santaflap/santaflap-backend/anticheat"
)

// Handler carries the dependencies of the HTTP routes.
type Handler struct {
	Service           *anticheat.Service
	JWTSecret         []byte
	TokenTTL          time.Duration
	AdminPasswordHash []byte

	hub *Hub
}

func NewHandler(svc *anticheat.Service, jwtSecret []byte, tokenTTL time.Duration, adminPasswordHash string) *Handler {
	h := &Handler{
		Service:           svc,
		JWTSecret:         jwtSecret,
		TokenTTL:          tokenTTL,
		AdminPasswordHash: []byte(adminPasswordHash),
		hub:               newHub(),
	}
	go h.hub.run()
	svc.OnScoreImproved(func(playerID string, score int) {
		go h.pushLeaderboard()
	})
	return h
}

// Close stops the leaderboard feed and drops its connections.
func (h *Handler) Close() {
	h.hub.stop()
}
