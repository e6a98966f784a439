package http

import "github.com/shopspring/decimal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CarPayload struct {
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Color  string `json:"color"`
	Status string `json:"status,omitempty"`
}

type CreateAdvertisementRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Car         CarPayload      `json:"car"`
}

type CarPatchPayload struct {
	Make   *string `json:"make,omitempty"`
	Model  *string `json:"model,omitempty"`
	Year   *int    `json:"year,omitempty"`
	Color  *string `json:"color,omitempty"`
	Status *string `json:"status,omitempty"`
}

type UpdateAdvertisementRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Car         *CarPatchPayload `json:"car,omitempty"`
}

type CarResponse struct {
	ID     string `json:"id"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Color  string `json:"color"`
	Status string `json:"status"`
}

type AdvertisementResponse struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Price           string       `json:"price"`
	Status          string       `json:"status"`
	CreatedAt       string       `json:"created_at"`
	CarID           string       `json:"car_id"`
	UserID          string       `json:"user_id,omitempty"`
	CarDetails      *CarResponse `json:"car_details"`
	PublisherMobile string       `json:"publisher_mobile,omitempty"`
}

type CarImageRequest struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description,omitempty"`
}

type CarImageResponse struct {
	ID          string `json:"id"`
	CarID       string `json:"car_id"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description,omitempty"`
}

type PriceRecordResponse struct {
	ID         string `json:"id"`
	CarID      string `json:"car_id"`
	Price      string `json:"price"`
	ChangeDate string `json:"change_date"`
}
