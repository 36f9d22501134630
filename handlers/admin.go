package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

const adminUser = "admin"

// AdminOnly guards the quarantine review routes with HTTP basic auth checked
// against the configured bcrypt hash.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.AdminPasswordHash) == 0 {
			utils.HandleError(w, responses.NotFoundError{Msg: "Not found."})
			return
		}

		user, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="quarantine"`)
			utils.HandleError(w, responses.UnauthenticatedError{Msg: "Admin credentials required."})
			return
		}
		if user != adminUser || bcrypt.CompareHashAndPassword(h.AdminPasswordHash, []byte(password)) != nil {
			utils.HandleError(w, responses.PermissionDeniedError{Msg: "Invalid admin credentials."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) FetchCheatRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.CheatRecords(r.Context(), mux.Vars(r)["playerId"])
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.HandleSuccess(w, models.SuccessResponse(records))
}
