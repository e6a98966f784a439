package ports

import (
	"context"
	"time"

	"carmarket/contexts/identity-access/account-service/domain/entities"
)

const (
	RoleAdmin     = "Admin"
	RoleUser      = "User"
	RoleModerator = "Moderator"
	RoleSystem    = "System"
	RoleSenior    = "Senior"
	RoleSeller    = "Seller"
)

// SeedRoles is the full role catalog in seed order.
func SeedRoles() []string {
	return []string{RoleAdmin, RoleUser, RoleModerator, RoleSystem, RoleSenior, RoleSeller}
}

func IsValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleUser, RoleModerator, RoleSystem, RoleSenior, RoleSeller:
		return true
	default:
		return false
	}
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PasswordHasher keeps the credential scheme out of the application layer.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) (entities.User, error)
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByMobile(ctx context.Context, mobileNumber string) (entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	SetActive(ctx context.Context, userID string, active bool) error
	GrantRole(ctx context.Context, userID string, roleName string) error
	RolesOf(ctx context.Context, userID string) ([]string, error)
	EnsureRole(ctx context.Context, roleName string) error
}

// SessionStore is the server-side session table keyed by an opaque token.
type SessionStore interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Put(ctx context.Context, token string, userID string, createdAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}
