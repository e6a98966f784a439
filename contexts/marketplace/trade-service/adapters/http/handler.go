package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"carmarket/contexts/marketplace/trade-service/application"
	"carmarket/contexts/marketplace/trade-service/ports"
	httptransport "carmarket/contexts/marketplace/trade-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateTransactionHandler(ctx context.Context, actor ports.Actor, req httptransport.CreateTransactionRequest) (httptransport.TransactionResponse, error) {
	view, err := h.Service.CreateTransaction(ctx, actor, req.CarID, req.AgreedPrice)
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return transactionResponse(view), nil
}

func (h Handler) UpdateStatusHandler(ctx context.Context, actor ports.Actor, transactionID string, req httptransport.UpdateTransactionStatusRequest) (httptransport.TransactionResponse, error) {
	view, err := h.Service.UpdateStatus(ctx, actor, transactionID, req.Status)
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return transactionResponse(view), nil
}

func (h Handler) ListTransactionsHandler(ctx context.Context, actor ports.Actor) ([]httptransport.TransactionResponse, error) {
	views, err := h.Service.ListTransactions(ctx, actor)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.TransactionResponse, 0, len(views))
	for _, view := range views {
		items = append(items, transactionResponse(view))
	}
	return items, nil
}

func (h Handler) GetTransactionHandler(ctx context.Context, actor ports.Actor, transactionID string) (httptransport.TransactionResponse, error) {
	view, err := h.Service.GetTransaction(ctx, actor, transactionID)
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return transactionResponse(view), nil
}

func transactionResponse(view ports.TransactionView) httptransport.TransactionResponse {
	return httptransport.TransactionResponse{
		ID:           view.Transaction.TransactionID,
		CarID:        view.Transaction.CarID,
		BuyerID:      view.Transaction.BuyerID,
		SellerID:     view.Transaction.SellerID,
		Status:       view.Transaction.Status,
		AgreedPrice:  view.Transaction.AgreedPrice.StringFixed(2),
		CreatedAt:    view.Transaction.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    view.Transaction.UpdatedAt.UTC().Format(time.RFC3339),
		CarMake:      view.CarMake,
		BuyerMobile:  view.BuyerMobile,
		SellerMobile: view.SellerMobile,
	}
}
