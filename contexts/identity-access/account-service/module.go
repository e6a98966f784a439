package accountservice

import (
	"log/slog"

	bcryptadapter "carmarket/contexts/identity-access/account-service/adapters/bcrypt"
	httpadapter "carmarket/contexts/identity-access/account-service/adapters/http"
	"carmarket/contexts/identity-access/account-service/adapters/memory"
	"carmarket/contexts/identity-access/account-service/application"
	"carmarket/contexts/identity-access/account-service/ports"
)

// Module is the account-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Hasher   ports.PasswordHasher
	Clock    ports.Clock
	IDs      ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users:    deps.Users,
		Sessions: deps.Sessions,
		Hasher:   deps.Hasher,
		Clock:    deps.Clock,
		IDs:      deps.IDs,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:    store,
		Sessions: store,
		Hasher:   bcryptadapter.Hasher{Cost: 4},
		Clock:    store,
		IDs:      store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
