package utils

import "golang.org/x/crypto/bcrypt"

// The only password in the service is the admin's.  cmd/hashpw prints the
// ADMIN_PASSWORD_HASH value with HashPassword and the login handler checks
// it with VerifyPassword.

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.  A malformed hash, such
// as an unset ADMIN_PASSWORD_HASH, never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
