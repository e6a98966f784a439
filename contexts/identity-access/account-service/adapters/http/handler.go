package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"carmarket/contexts/identity-access/account-service/application"
	"carmarket/contexts/identity-access/account-service/domain/entities"
	httptransport "carmarket/contexts/identity-access/account-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.RegisterResponse, error) {
	user, err := h.Service.Register(ctx, req.MobileNumber, req.Password)
	if err != nil {
		return httptransport.RegisterResponse{}, err
	}
	return httptransport.RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.UserID,
	}, nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	token, user, err := h.Service.Login(ctx, req.MobileNumber, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		Message:      "Login successful",
		SessionToken: token,
		UserID:       user.UserID,
	}, nil
}

func (h Handler) LogoutHandler(ctx context.Context, token string) (httptransport.LogoutResponse, error) {
	if err := h.Service.Logout(ctx, token); err != nil {
		return httptransport.LogoutResponse{}, err
	}
	return httptransport.LogoutResponse{Message: "Logged out"}, nil
}

// AuthenticateHandler resolves the session token carried by a request.
// The HTTP surface calls this before every gated route.
func (h Handler) AuthenticateHandler(ctx context.Context, token string) (entities.Principal, error) {
	return h.Service.Authenticate(ctx, token)
}

func (h Handler) ListUsersHandler(ctx context.Context, principal entities.Principal) ([]httptransport.UserSummary, error) {
	users, err := h.Service.ListUsers(ctx, principal)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.UserSummary, 0, len(users))
	for _, user := range users {
		items = append(items, httptransport.UserSummary{
			ID:           user.UserID,
			MobileNumber: user.MobileNumber,
			Active:       user.Active,
			Roles:        user.Roles,
		})
	}
	return items, nil
}

func (h Handler) DeactivateHandler(ctx context.Context, principal entities.Principal, userID string) (httptransport.DeactivateResponse, error) {
	if err := h.Service.Deactivate(ctx, principal, strings.TrimSpace(userID)); err != nil {
		return httptransport.DeactivateResponse{}, err
	}
	return httptransport.DeactivateResponse{
		Message: fmt.Sprintf("User %s deactivated successfully", strings.TrimSpace(userID)),
	}, nil
}

func (h Handler) GrantRoleHandler(ctx context.Context, principal entities.Principal, userID string, req httptransport.GrantRoleRequest) (httptransport.GrantRoleResponse, error) {
	if err := h.Service.GrantRole(ctx, principal, strings.TrimSpace(userID), req.Role); err != nil {
		return httptransport.GrantRoleResponse{}, err
	}
	return httptransport.GrantRoleResponse{
		Message: fmt.Sprintf("Role %s granted", strings.TrimSpace(req.Role)),
	}, nil
}
