// Package auth provides the cryptographic pieces of the login path: bcrypt
// password hashing and signed session tokens.
package auth

import (
	"time"

	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims plus the account's stable reference,
// display identifier and a snapshot of its rights at issuance time. The
// snapshot is informational; authorization decisions re-read the stored
// account.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string   `json:"account_id"`
	LoginID   string   `json:"login_id"`
	Rights    []string `json:"rights"`
}

// GenerateToken mints an HS256-signed session token for the account with a
// fixed validity window. There is no refresh mechanism and no server-side
// session state.
func GenerateToken(account *models.Account, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		AccountID: account.ID,
		LoginID:   account.LoginID,
		Rights:    account.Rights,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies a session token and returns its claims. Malformed,
// expired and tampered tokens all collapse into common.ErrInvalidToken so
// callers cannot probe which check failed.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
