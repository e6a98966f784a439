package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accounterrors "carmarket/contexts/identity-access/account-service/domain/errors"
	accountports "carmarket/contexts/identity-access/account-service/ports"
	accounthttp "carmarket/contexts/identity-access/account-service/transport/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    resp.SessionToken,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authenticate(r); err != nil {
		writeAccountDomainError(w, err)
		return
	}
	resp, err := s.accounts.Handler.LogoutHandler(r.Context(), resolveSessionToken(r))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, accountports.RoleAdmin, accountports.RoleSenior)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.ListUsersHandler(r.Context(), principal)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, accountports.RoleAdmin, accountports.RoleSenior)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.DeactivateHandler(r.Context(), principal, r.PathValue("user_id"))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, accountports.RoleAdmin, accountports.RoleSenior)
	if !ok {
		return
	}
	var req accounthttp.GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.GrantRoleHandler(r.Context(), principal, r.PathValue("user_id"), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrUnauthenticated):
		writeAccountError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidCredentials),
		errors.Is(err, accounterrors.ErrAccountDeactivated):
		writeAccountError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, accounterrors.ErrForbidden):
		writeAccountError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidRequest),
		errors.Is(err, accounterrors.ErrSelfDeactivation):
		writeAccountError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accounterrors.ErrUserNotFound),
		errors.Is(err, accounterrors.ErrRoleNotFound):
		writeAccountError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, accounterrors.ErrMobileAlreadyTaken),
		errors.Is(err, accounterrors.ErrRoleAlreadyGranted):
		writeAccountError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
