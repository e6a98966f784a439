package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator mints v4 UUIDs for car, advertisement and history rows.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
