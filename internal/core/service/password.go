package service

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist so that a failed
// lookup costs roughly the same as a failed password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("task-api-timing-equalizer"), bcrypt.DefaultCost)

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// hashPassword hashes a plaintext password with the given bcrypt cost.
func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// comparePassword verifies a password against its hash in constant time.
func comparePassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
