package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mapleleafu/santaflap/santaflap-backend/middleware"
	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

const maxActionBodyBytes = 4 << 10

// SubmitAction is the submitAction RPC.
func (h *Handler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	var uid string
	if authInfo := middleware.AuthInfo(r.Context()); authInfo != nil {
		uid = authInfo.UID
	}
	if uid == "" {
		utils.HandleError(w, responses.UnauthenticatedError{Msg: "User must be authenticated"})
		return
	}

	var req models.SubmitActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBodyBytes)).Decode(&req); err != nil {
		utils.HandleError(w, responses.InvalidArgumentError{Msg: "Invalid request."})
		return
	}

	result, err := h.Service.SubmitAction(r.Context(), uid, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.HandleResult(w, result)
}
