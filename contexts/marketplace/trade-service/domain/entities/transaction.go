package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. Pending may move to any other status; accepted
// may only complete; rejected and completed are terminal.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

type Transaction struct {
	TransactionID string          `json:"id"`
	CarID         string          `json:"car_id"`
	BuyerID       string          `json:"buyer_id"`
	SellerID      string          `json:"seller_id"`
	Status        string          `json:"status"`
	AgreedPrice   decimal.Decimal `json:"agreed_price"`
	CreatedAt     time.Time       `json:"transaction_date"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsClosed reports whether the transaction reached a terminal status.
func (t Transaction) IsClosed() bool {
	return t.Status == StatusRejected || t.Status == StatusCompleted
}

// CanTransition reports whether the transaction may move to the target
// status.
func (t Transaction) CanTransition(target string) bool {
	switch t.Status {
	case StatusPending:
		return target == StatusAccepted || target == StatusRejected || target == StatusCompleted
	case StatusAccepted:
		return target == StatusCompleted
	default:
		return false
	}
}

// IsValidStatus reports whether the value is one of the known statuses.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	}
	return false
}
