package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the provided password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a stored bcrypt hash with a plaintext candidate.
// Accounts without a password (Google sign-in only) never match.
func CheckPassword(hashedPassword *string, password string) bool {
	if hashedPassword == nil || *hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hashedPassword), []byte(password)) == nil
}
