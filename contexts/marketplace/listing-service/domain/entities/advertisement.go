package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const AdvertisementStatusDefault = "active"

// Advertisement is the listing published for a car. CarID is unique,
// which enforces the one-advertisement-per-car invariant. PublisherID
// may be empty when the publishing account was removed.
type Advertisement struct {
	AdvertisementID string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	CarID           string          `json:"car_id"`
	PublisherID     string          `json:"user_id"`
}
