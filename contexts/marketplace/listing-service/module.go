package listingservice

import (
	"log/slog"

	httpadapter "carmarket/contexts/marketplace/listing-service/adapters/http"
	"carmarket/contexts/marketplace/listing-service/adapters/memory"
	"carmarket/contexts/marketplace/listing-service/application"
	"carmarket/contexts/marketplace/listing-service/ports"
)

// Module is the listing-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Trades     ports.TradeGuard
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Trades: deps.Trades,
		Clock:  deps.Clock,
		IDs:    deps.IDs,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. Pass a nil trade guard when the trade context is not wired;
// deletion then skips the transaction check.
func NewInMemoryModule(trades ports.TradeGuard, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Trades:     trades,
		Clock:      store,
		IDs:        store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
