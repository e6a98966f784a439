package tradeservice

import (
	"log/slog"

	httpadapter "carmarket/contexts/marketplace/trade-service/adapters/http"
	"carmarket/contexts/marketplace/trade-service/adapters/memory"
	"carmarket/contexts/marketplace/trade-service/application"
	"carmarket/contexts/marketplace/trade-service/ports"
)

// Module is the trade-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Listings   ports.ListingDirectory
	Users      ports.UserDirectory
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:     deps.Repository,
		Listings: deps.Listings,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDs:      deps.IDs,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule wires the service onto the memory store. Nil
// directories fall back to the store's own fixtures, which is how the
// unit tests run the service standalone.
func NewInMemoryModule(listings ports.ListingDirectory, users ports.UserDirectory, logger *slog.Logger) Module {
	store := memory.NewStore()
	if listings == nil {
		listings = store
	}
	if users == nil {
		users = store
	}
	module := NewModule(Dependencies{
		Repository: store,
		Listings:   listings,
		Users:      users,
		Clock:      store,
		IDs:        store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
