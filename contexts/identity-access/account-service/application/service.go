package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"carmarket/contexts/identity-access/account-service/domain/entities"
	domainerrors "carmarket/contexts/identity-access/account-service/domain/errors"
	"carmarket/contexts/identity-access/account-service/ports"
)

type Service struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Hasher   ports.PasswordHasher
	Clock    ports.Clock
	IDs      ports.IDGenerator
	Logger   *slog.Logger
}

// Register creates a user with the default User role granted.
func (s Service) Register(ctx context.Context, mobileNumber string, password string) (entities.User, error) {
	mobileNumber = strings.TrimSpace(mobileNumber)
	if mobileNumber == "" || password == "" {
		return entities.User{}, domainerrors.ErrInvalidRequest
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return entities.User{}, err
	}
	userID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}

	user, err := s.Users.CreateUser(ctx, entities.User{
		UserID:       userID,
		MobileNumber: mobileNumber,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return entities.User{}, err
	}
	if err := s.Users.GrantRole(ctx, user.UserID, ports.RoleUser); err != nil {
		return entities.User{}, err
	}
	user.Roles = []string{ports.RoleUser}

	resolveLogger(s.Logger).Info("user registered",
		"event", "user_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, nil
}

// Login verifies credentials and opens a session. The returned token is
// the opaque session key handed back to the client.
func (s Service) Login(ctx context.Context, mobileNumber string, password string) (string, entities.User, error) {
	mobileNumber = strings.TrimSpace(mobileNumber)
	if mobileNumber == "" || password == "" {
		return "", entities.User{}, domainerrors.ErrInvalidRequest
	}

	user, err := s.Users.GetUserByMobile(ctx, mobileNumber)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return "", entities.User{}, domainerrors.ErrInvalidCredentials
		}
		return "", entities.User{}, err
	}
	if err := s.Hasher.Compare(user.PasswordHash, password); err != nil {
		return "", entities.User{}, domainerrors.ErrInvalidCredentials
	}
	if !user.Active {
		return "", entities.User{}, domainerrors.ErrAccountDeactivated
	}

	token, err := s.IDs.NewID(ctx)
	if err != nil {
		return "", entities.User{}, err
	}
	if err := s.Sessions.Put(ctx, token, user.UserID, s.now()); err != nil {
		return "", entities.User{}, err
	}

	resolveLogger(s.Logger).Info("session opened",
		"event", "session_opened",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return token, user, nil
}

// Logout is idempotent; clearing an unknown token is not an error.
func (s Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to a principal. A stale session
// (deleted or deactivated user) is cleared as a side effect so the next
// request starts logged out. The user record itself is never mutated here.
func (s Service) Authenticate(ctx context.Context, token string) (entities.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Principal{}, domainerrors.ErrUnauthenticated
	}

	userID, found, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return entities.Principal{}, err
	}
	if !found {
		return entities.Principal{}, domainerrors.ErrUnauthenticated
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			_ = s.Sessions.Delete(ctx, token)
			return entities.Principal{}, domainerrors.ErrUnauthenticated
		}
		return entities.Principal{}, err
	}
	if !user.Active {
		_ = s.Sessions.Delete(ctx, token)
		return entities.Principal{}, domainerrors.ErrUnauthenticated
	}

	roles, err := s.Users.RolesOf(ctx, user.UserID)
	if err != nil {
		return entities.Principal{}, err
	}
	return entities.Principal{
		UserID:       user.UserID,
		MobileNumber: user.MobileNumber,
		Roles:        roles,
	}, nil
}

// Authorize passes iff the principal holds any one of the required roles.
func (s Service) Authorize(principal entities.Principal, required ...string) error {
	if !principal.HasAnyRole(required...) {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (s Service) ListUsers(ctx context.Context, principal entities.Principal) ([]entities.User, error) {
	if err := s.Authorize(principal, ports.RoleAdmin, ports.RoleSenior); err != nil {
		return nil, err
	}
	return s.Users.ListUsers(ctx)
}

// Deactivate flips the active flag off and drops the target's live
// sessions. In-flight requests are not interrupted; the next request
// fails authentication.
func (s Service) Deactivate(ctx context.Context, principal entities.Principal, userID string) error {
	if err := s.Authorize(principal, ports.RoleAdmin, ports.RoleSenior); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidRequest
	}
	if userID == principal.UserID {
		return domainerrors.ErrSelfDeactivation
	}
	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.Users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	if err := s.Sessions.DeleteForUser(ctx, userID); err != nil {
		resolveLogger(s.Logger).Warn("session cleanup after deactivation failed",
			"event", "session_cleanup_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	}
	return nil
}

func (s Service) GrantRole(ctx context.Context, principal entities.Principal, userID string, roleName string) error {
	if err := s.Authorize(principal, ports.RoleAdmin, ports.RoleSenior); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	roleName = strings.TrimSpace(roleName)
	if userID == "" || !ports.IsValidRole(roleName) {
		return domainerrors.ErrInvalidRequest
	}
	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.Users.GrantRole(ctx, userID, roleName)
}

// MobileNumberOf is the directory read the marketplace contexts use to
// show contact numbers next to listings and transactions. An unknown
// user resolves to an empty string rather than an error.
func (s Service) MobileNumberOf(ctx context.Context, userID string) (string, error) {
	user, err := s.Users.GetUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.MobileNumber, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
