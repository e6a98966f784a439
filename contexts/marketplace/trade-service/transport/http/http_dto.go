package http

import "github.com/shopspring/decimal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateTransactionRequest struct {
	CarID       string          `json:"car_id"`
	AgreedPrice decimal.Decimal `json:"agreed_price"`
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status"`
}

type TransactionResponse struct {
	ID           string `json:"id"`
	CarID        string `json:"car_id"`
	BuyerID      string `json:"buyer_id"`
	SellerID     string `json:"seller_id"`
	Status       string `json:"status"`
	AgreedPrice  string `json:"agreed_price"`
	CreatedAt    string `json:"transaction_date"`
	UpdatedAt    string `json:"updated_at"`
	CarMake      string `json:"car_make,omitempty"`
	BuyerMobile  string `json:"buyer_mobile,omitempty"`
	SellerMobile string `json:"seller_mobile,omitempty"`
}
