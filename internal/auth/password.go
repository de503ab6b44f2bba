package auth

import (
	"golang.org/x/crypto/bcrypt"

	"palette/config"
)

// DummyHash is a syntactically valid bcrypt hash that matches no password.
// When a login targets an unknown email the caller still verifies against
// this hash at the configured cost, so the unknown-user path takes as long
// as the known-user path.
const DummyHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword derives a salted bcrypt hash at the configured cost.
func HashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if config.GlobalConfig != nil && config.GlobalConfig.Auth.BcryptCost > 0 {
		cost = config.GlobalConfig.Auth.BcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash verifies plaintext against a stored hash. bcrypt's
// comparison is constant-time with respect to the mismatch position.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
