package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a one-way bcrypt hash of the supplied credential.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash.
// bcrypt's comparison is constant-effort with respect to the candidate.
func CheckPassword(hash string, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
