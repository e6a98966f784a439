// Package bootstrap is the composition root. Construction and wiring live
// here so context code stays free of runtime concerns.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	accountservice "carmarket/contexts/identity-access/account-service"
	bcryptadapter "carmarket/contexts/identity-access/account-service/adapters/bcrypt"
	accountpostgres "carmarket/contexts/identity-access/account-service/adapters/postgres"
	accountentities "carmarket/contexts/identity-access/account-service/domain/entities"
	accounterrors "carmarket/contexts/identity-access/account-service/domain/errors"
	accountports "carmarket/contexts/identity-access/account-service/ports"
	listingservice "carmarket/contexts/marketplace/listing-service"
	listingpostgres "carmarket/contexts/marketplace/listing-service/adapters/postgres"
	tradeservice "carmarket/contexts/marketplace/trade-service"
	tradepostgres "carmarket/contexts/marketplace/trade-service/adapters/postgres"
	"carmarket/internal/platform/config"
	"carmarket/internal/platform/db"
	"carmarket/internal/platform/httpserver"
)

const (
	seedAdminMobile   = "09123456789"
	seedAdminPassword = "adminpass"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	seed     bool
	accounts accountservice.Module
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, logger)
	accounts := accountservice.NewModule(accountservice.Dependencies{
		Users:    accountRepo,
		Sessions: accountRepo,
		Hasher:   bcryptadapter.Hasher{},
		Clock:    accountpostgres.SystemClock{},
		IDs:      accountpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	tradeRepo := tradepostgres.NewRepository(pg.DB, logger)
	listingRepo := listingpostgres.NewRepository(pg.DB, logger)
	listings := listingservice.NewModule(listingservice.Dependencies{
		Repository: listingRepo,
		Trades:     tradeRepo,
		Clock:      listingpostgres.SystemClock{},
		IDs:        listingpostgres.UUIDGenerator{},
		Logger:     logger,
	})
	trades := tradeservice.NewModule(tradeservice.Dependencies{
		Repository: tradeRepo,
		Listings:   listings.Service,
		Users:      accounts.Service,
		Clock:      tradepostgres.SystemClock{},
		IDs:        tradepostgres.UUIDGenerator{},
		Logger:     logger,
	})

	server := httpserver.New(accounts, listings, trades, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		seed:     cfg.SeedOnStart,
		accounts: accounts,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.seed {
		if err := a.seedAccounts(ctx); err != nil {
			return err
		}
	}
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

// seedAccounts makes the role catalog and the bootstrap admin exist.
// Every step is idempotent so restarting the process is safe.
func (a *APIApp) seedAccounts(ctx context.Context) error {
	users := a.accounts.Service.Users
	for _, role := range accountports.SeedRoles() {
		if err := users.EnsureRole(ctx, role); err != nil {
			return err
		}
	}

	_, err := users.GetUserByMobile(ctx, seedAdminMobile)
	if err == nil {
		return nil
	}
	if !errors.Is(err, accounterrors.ErrUserNotFound) {
		return err
	}

	hash, err := a.accounts.Service.Hasher.Hash(seedAdminPassword)
	if err != nil {
		return err
	}
	userID, err := a.accounts.Service.IDs.NewID(ctx)
	if err != nil {
		return err
	}
	admin, err := users.CreateUser(ctx, accountentities.User{
		UserID:       userID,
		MobileNumber: seedAdminMobile,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    a.accounts.Service.Clock.Now(),
	})
	if err != nil {
		if errors.Is(err, accounterrors.ErrMobileAlreadyTaken) {
			return nil
		}
		return err
	}
	if err := users.GrantRole(ctx, admin.UserID, accountports.RoleAdmin); err != nil {
		return err
	}

	a.logger.Info("admin user seeded",
		"event", "admin_seeded",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"user_id", admin.UserID,
	)
	return nil
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
