package auth

import (
	"errors"
	"time"

	"palette/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the only token type the middleware accepts. The
// discriminator keeps a future refresh token from ever passing as an
// access token.
const TokenTypeAccess = "access"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: identity plus the standard issue/expiry set.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for the given identity,
// expiring after the configured lifetime (24h by default).
func GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(config.GlobalConfig.JWT.AccessExpire) * time.Second)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.GlobalConfig.JWT.Secret))
}

// ParseToken validates signature, expiry and token type. Expired and
// tampered tokens are indistinguishable to the caller: both return
// ErrInvalidToken.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GlobalConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
