package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accountports "carmarket/contexts/identity-access/account-service/ports"
	tradeerrors "carmarket/contexts/marketplace/trade-service/domain/errors"
	tradehttp "carmarket/contexts/marketplace/trade-service/transport/http"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, accountports.RoleUser)
	if !ok {
		return
	}
	var req tradehttp.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trades.Handler.CreateTransactionHandler(r.Context(), tradeActor(principal), req)
	if err != nil {
		writeTradeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r,
		accountports.RoleUser,
		accountports.RoleAdmin,
		accountports.RoleSenior,
		accountports.RoleSeller,
	)
	if !ok {
		return
	}
	resp, err := s.trades.Handler.ListTransactionsHandler(r.Context(), tradeActor(principal))
	if err != nil {
		writeTradeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r,
		accountports.RoleUser,
		accountports.RoleAdmin,
		accountports.RoleSenior,
		accountports.RoleSeller,
	)
	if !ok {
		return
	}
	resp, err := s.trades.Handler.GetTransactionHandler(r.Context(), tradeActor(principal), r.PathValue("transaction_id"))
	if err != nil {
		writeTradeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r,
		accountports.RoleSeller,
		accountports.RoleAdmin,
		accountports.RoleSenior,
	)
	if !ok {
		return
	}
	var req tradehttp.UpdateTransactionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTradeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.trades.Handler.UpdateStatusHandler(r.Context(), tradeActor(principal), r.PathValue("transaction_id"), req)
	if err != nil {
		writeTradeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeTradeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tradeerrors.ErrForbidden):
		writeTradeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, tradeerrors.ErrInvalidRequest),
		errors.Is(err, tradeerrors.ErrSelfTrade),
		errors.Is(err, tradeerrors.ErrInvalidStatus):
		writeTradeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, tradeerrors.ErrTransactionNotFound),
		errors.Is(err, tradeerrors.ErrCarNotFound),
		errors.Is(err, tradeerrors.ErrAdvertisementNotFound):
		writeTradeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, tradeerrors.ErrPendingTransactionExists),
		errors.Is(err, tradeerrors.ErrCarAlreadyTraded),
		errors.Is(err, tradeerrors.ErrInvalidTransition),
		errors.Is(err, tradeerrors.ErrTransactionClosed):
		writeTradeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeTradeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTradeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tradehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
