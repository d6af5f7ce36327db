package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the provided password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// HashOTP hashes a one-time code with a per-record salt.
func HashOTP(code string) (string, error) {
	return HashPassword(code)
}

// CheckOTP compares a submitted code against its stored hash.
func CheckOTP(codeHash, code string) bool {
	return CheckPassword(codeHash, code)
}
