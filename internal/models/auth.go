package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes carried in the "scope" claim. Access tokens guard the API,
// refresh tokens are accepted only by the refresh endpoint.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

type TokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}
