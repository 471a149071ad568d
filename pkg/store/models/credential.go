package models

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the cost parameter for bcrypt hashing. Cost 10
// balances verification latency against brute-force resistance.
const DefaultBcryptCost = 10

// MaxPasswordLength is the maximum allowed password length.
// bcrypt silently truncates at 72 bytes, so longer inputs are rejected.
const MaxPasswordLength = 72

// ValidatePassword checks password constraints before hashing.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a bcrypt hash in constant time.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
