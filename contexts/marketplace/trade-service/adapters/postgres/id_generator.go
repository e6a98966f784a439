package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator mints v4 UUIDs for transaction identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
