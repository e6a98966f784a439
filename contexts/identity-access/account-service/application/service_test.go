package application

import (
	"context"
	"errors"
	"testing"

	bcryptadapter "carmarket/contexts/identity-access/account-service/adapters/bcrypt"
	"carmarket/contexts/identity-access/account-service/adapters/memory"
	"carmarket/contexts/identity-access/account-service/domain/entities"
	domainerrors "carmarket/contexts/identity-access/account-service/domain/errors"
	"carmarket/contexts/identity-access/account-service/ports"
)

func newTestService() (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Users:    store,
		Sessions: store,
		Hasher:   bcryptadapter.Hasher{Cost: 4},
		Clock:    store,
		IDs:      store,
	}
	return service, store
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	service, _ := newTestService()

	user, err := service.Register(context.Background(), "09120000001", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != ports.RoleUser {
		t.Fatalf("expected default User role, got %v", user.Roles)
	}

	token, _, err := service.Login(context.Background(), "09120000001", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	principal, err := service.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if principal.UserID != user.UserID {
		t.Fatalf("unexpected principal user %s", principal.UserID)
	}
	if !principal.HasAnyRole(ports.RoleUser) {
		t.Fatalf("expected principal to hold User role")
	}
}

func TestRegisterDuplicateMobileConflicts(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Register(context.Background(), "09120000002", "secret"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := service.Register(context.Background(), "09120000002", "other")
	if !errors.Is(err, domainerrors.ErrMobileAlreadyTaken) {
		t.Fatalf("expected duplicate mobile conflict, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Register(context.Background(), "09120000003", "secret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, _, err := service.Login(context.Background(), "09120000003", "wrong")
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthenticateInactiveUserClearsSession(t *testing.T) {
	service, store := newTestService()

	user, err := service.Register(context.Background(), "09120000004", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, _, err := service.Login(context.Background(), "09120000004", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := store.SetActive(context.Background(), user.UserID, false); err != nil {
		t.Fatalf("set active failed: %v", err)
	}

	_, err = service.Authenticate(context.Background(), token)
	if !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	// The stale session must be gone, not just rejected.
	_, found, err := store.Get(context.Background(), token)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if found {
		t.Fatalf("expected session to be cleared")
	}
}

func TestAuthorizeRequiresRoleIntersection(t *testing.T) {
	service, _ := newTestService()

	principal := entities.Principal{UserID: "u1", Roles: []string{ports.RoleUser}}
	if err := service.Authorize(principal, ports.RoleAdmin, ports.RoleSenior); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := service.Authorize(principal, ports.RoleSeller, ports.RoleUser); err != nil {
		t.Fatalf("expected allowed via User role, got %v", err)
	}
	if err := service.Authorize(principal); err != nil {
		t.Fatalf("empty requirement must allow any principal, got %v", err)
	}
}

func TestDeactivateBlocksSelfAndClearsSessions(t *testing.T) {
	service, store := newTestService()

	admin, err := service.Register(context.Background(), "09120000005", "secret")
	if err != nil {
		t.Fatalf("register admin failed: %v", err)
	}
	if err := store.GrantRole(context.Background(), admin.UserID, ports.RoleAdmin); err != nil {
		t.Fatalf("grant admin failed: %v", err)
	}
	target, err := service.Register(context.Background(), "09120000006", "secret")
	if err != nil {
		t.Fatalf("register target failed: %v", err)
	}
	targetToken, _, err := service.Login(context.Background(), "09120000006", "secret")
	if err != nil {
		t.Fatalf("target login failed: %v", err)
	}

	actor := entities.Principal{UserID: admin.UserID, Roles: []string{ports.RoleAdmin, ports.RoleUser}}

	if err := service.Deactivate(context.Background(), actor, admin.UserID); !errors.Is(err, domainerrors.ErrSelfDeactivation) {
		t.Fatalf("expected self-deactivation rejection, got %v", err)
	}
	if err := service.Deactivate(context.Background(), actor, target.UserID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	_, found, err := store.Get(context.Background(), targetToken)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if found {
		t.Fatalf("expected target sessions to be cleared")
	}
	if _, _, err := service.Login(context.Background(), "09120000006", "secret"); !errors.Is(err, domainerrors.ErrAccountDeactivated) {
		t.Fatalf("expected deactivated account login rejection, got %v", err)
	}
}

func TestGrantRoleDuplicateConflicts(t *testing.T) {
	service, store := newTestService()

	admin, err := service.Register(context.Background(), "09120000007", "secret")
	if err != nil {
		t.Fatalf("register admin failed: %v", err)
	}
	if err := store.GrantRole(context.Background(), admin.UserID, ports.RoleSenior); err != nil {
		t.Fatalf("grant senior failed: %v", err)
	}
	target, err := service.Register(context.Background(), "09120000008", "secret")
	if err != nil {
		t.Fatalf("register target failed: %v", err)
	}

	actor := entities.Principal{UserID: admin.UserID, Roles: []string{ports.RoleSenior, ports.RoleUser}}

	if err := service.GrantRole(context.Background(), actor, target.UserID, ports.RoleSeller); err != nil {
		t.Fatalf("grant seller failed: %v", err)
	}
	err = service.GrantRole(context.Background(), actor, target.UserID, ports.RoleSeller)
	if !errors.Is(err, domainerrors.ErrRoleAlreadyGranted) {
		t.Fatalf("expected duplicate grant conflict, got %v", err)
	}
	if err := service.GrantRole(context.Background(), actor, target.UserID, "Wizard"); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected unknown role rejection, got %v", err)
	}
}
