package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const CarStatusDefault = "used"

// Car is the physical vehicle behind an advertisement. A car has exactly
// one advertisement and at most one transaction over its lifetime.
type Car struct {
	CarID  string `json:"id"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Color  string `json:"color"`
	Status string `json:"status"`
}

// CarImage is an append-only child of Car.
type CarImage struct {
	ImageID     string `json:"id"`
	CarID       string `json:"car_id"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// PriceRecord is one entry in a car's price history.
type PriceRecord struct {
	RecordID  string          `json:"id"`
	CarID     string          `json:"car_id"`
	Price     decimal.Decimal `json:"price"`
	ChangedAt time.Time       `json:"change_date"`
}

// OwnershipRecord tracks who held a car and when. EndDate is nil while
// the ownership is current.
type OwnershipRecord struct {
	RecordID  string     `json:"id"`
	CarID     string     `json:"car_id"`
	OwnerID   string     `json:"owner_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}
