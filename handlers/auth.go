package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

// AnonymousSignIn gives the browser a stable caller identity. The uid is not
// tied to the 4-digit player ID; it only binds sessions to their creator.
func (h *Handler) AnonymousSignIn(w http.ResponseWriter, r *http.Request) {
	uid := uuid.NewString()

	tokenString, err := h.IssueToken(uid, time.Now())
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalError{Msg: "Failed to generate token.", Cause: err})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{
		"access_token": tokenString,
		"uid":          uid,
	}))
}

func (h *Handler) IssueToken(uid string, now time.Time) (string, error) {
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.TokenTTL)),
		},
		UID: uid,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}
