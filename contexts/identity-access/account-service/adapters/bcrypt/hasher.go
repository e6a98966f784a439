package bcryptadapter

import (
	"golang.org/x/crypto/bcrypt"

	"carmarket/contexts/identity-access/account-service/ports"
)

// Hasher implements ports.PasswordHasher with bcrypt.
type Hasher struct {
	Cost int
}

func (h Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	raw, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (h Hasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var _ ports.PasswordHasher = Hasher{}
