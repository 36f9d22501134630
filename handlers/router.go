package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mapleleafu/santaflap/santaflap-backend/middleware"
	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/healthz", Health).Methods("GET")
	r.HandleFunc("/api/auth/anonymous", h.AnonymousSignIn).Methods("POST")
	r.HandleFunc("/api/leaderboard", h.FetchLeaderboard).Methods("GET")
	r.HandleFunc("/api/players/{playerId}/score", h.FetchPlayerScore).Methods("GET")
	r.HandleFunc("/ws/leaderboard", h.LeaderboardFeed)

	// Quarantine review
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.AdminOnly)
	admin.HandleFunc("/cheats/{playerId}", h.FetchCheatRecords).Methods("GET")

	// Secured routes
	secured := r.PathPrefix("/api").Subrouter()
	secured.Use(middleware.JWTValidationMiddleware(h.JWTSecret))
	secured.HandleFunc("/actions", h.SubmitAction).Methods("POST")
	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"status": "ok"}))
}
