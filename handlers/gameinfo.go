package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mapleleafu/santaflap/santaflap-backend/anticheat"
	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

func (h *Handler) FetchPlayerScore(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	score, err := h.Service.PlayerScore(r.Context(), playerID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	normalized, _ := anticheat.ParsePlayerID(playerID)
	utils.HandleSuccess(w, models.SuccessResponse(models.LeaderboardEntry{PlayerID: normalized, Score: score}))
}

func (h *Handler) FetchLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := anticheat.DefaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.HandleError(w, responses.InvalidArgumentError{Msg: "limit must be a positive integer."})
			return
		}
		limit = n
	}

	entries, err := h.Service.TopPlayers(r.Context(), limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.HandleSuccess(w, models.SuccessResponse(entries))
}
