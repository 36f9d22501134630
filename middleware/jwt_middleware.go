package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mapleleafu/santaflap/santaflap-backend/common"
	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
	"github.com/mapleleafu/santaflap/santaflap-backend/utils"
)

var errMissingUID = errors.New("token carries no uid")

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenStr string, secret []byte) (*models.CustomClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKey
		}
		return secret, nil
	}

	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UID == "" {
		return nil, errMissingUID
	}
	return claims, nil
}

func JWTValidationMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if tokenStr == "" {
				utils.HandleError(w, responses.UnauthenticatedError{Msg: "User must be authenticated"})
				return
			}

			authInfo, err := ParseToken(tokenStr, secret)
			if err != nil {
				utils.HandleError(w, responses.UnauthenticatedError{Msg: "Your token is invalid or expired. Please sign in again."})
				return
			}

			// Store the claims in the context
			ctx := context.WithValue(r.Context(), common.AuthInfoKey, authInfo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthInfo returns the caller's claims, or nil when the request was not
// authenticated.
func AuthInfo(ctx context.Context) *models.CustomClaims {
	claims, _ := ctx.Value(common.AuthInfoKey).(*models.CustomClaims)
	return claims
}
