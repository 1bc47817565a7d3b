package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olholv/contactbook/internal/models"
)

// TokenManager issues and verifies HMAC-signed bearer tokens. The shared
// secret is injected once at construction and never re-read.
type TokenManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// Small clock-skew tolerance for expiry checks.
const verifyLeeway = 5 * time.Second

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

func (tm *TokenManager) generate(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", scope, err)
	}

	return tokenString, nil
}

// GenerateAccessToken creates a short-lived access-scope token for the
// given subject email. The email-confirmation flow reuses this encoding.
func (tm *TokenManager) GenerateAccessToken(email string) (string, error) {
	return tm.generate(email, models.ScopeAccess, tm.accessTokenExpiry)
}

// GenerateRefreshToken creates a long-lived refresh-scope token
func (tm *TokenManager) GenerateRefreshToken(email string) (string, error) {
	return tm.generate(email, models.ScopeRefresh, tm.refreshTokenExpiry)
}

// Verify parses and validates a token and checks its scope claim. Expired,
// malformed/bad-signature and wrong-scope tokens are reported distinctly
// because callers surface different messages for each.
func (tm *TokenManager) Verify(tokenString, expectedScope string) (*models.TokenClaims, error) {
	claims, err := tm.decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Scope != expectedScope {
		return nil, models.ErrTokenInvalidScope
	}

	return claims, nil
}

// VerifyEmailToken validates signature and expiry but not scope. The
// confirmation path accepts any well-formed token issued with this secret,
// matching the original confirmation decoder.
func (tm *TokenManager) VerifyEmailToken(tokenString string) (string, error) {
	claims, err := tm.decode(tokenString)
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", models.ErrTokenInvalid
	}

	return claims.Subject, nil
}

func (tm *TokenManager) decode(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithLeeway(verifyLeeway))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	return claims, nil
}
