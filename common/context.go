package common

type contextKey string

// AuthInfoKey holds the *models.CustomClaims of the authenticated caller.
const AuthInfoKey contextKey = "authInfo"
