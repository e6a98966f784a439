package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	accountservice "carmarket/contexts/identity-access/account-service"
	accountentities "carmarket/contexts/identity-access/account-service/domain/entities"
	accountports "carmarket/contexts/identity-access/account-service/ports"
	listingservice "carmarket/contexts/marketplace/listing-service"
	listingports "carmarket/contexts/marketplace/listing-service/ports"
	tradeservice "carmarket/contexts/marketplace/trade-service"
	tradeports "carmarket/contexts/marketplace/trade-service/ports"
	_ "carmarket/internal/platform/httpserver/docs"
)

const sessionCookieName = "session_token"

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	accounts accountservice.Module
	listings listingservice.Module
	trades   tradeservice.Module
}

func New(
	accounts accountservice.Module,
	listings listingservice.Module,
	trades tradeservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		accounts: accounts,
		listings: listings,
		trades:   trades,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/users", s.handleListUsers)
	s.mux.HandleFunc("PUT /api/users/{user_id}/deactivate", s.handleDeactivateUser)
	s.mux.HandleFunc("POST /api/users/{user_id}/roles", s.handleGrantRole)

	s.mux.HandleFunc("GET /api/cars", s.handleListCars)
	s.mux.HandleFunc("GET /api/cars/{car_id}", s.handleGetCar)
	s.mux.HandleFunc("GET /api/cars/{car_id}/related", s.handleRelatedCars)
	s.mux.HandleFunc("GET /api/cars/{car_id}/images", s.handleListCarImages)
	s.mux.HandleFunc("POST /api/cars/{car_id}/images", s.handleAddCarImage)
	s.mux.HandleFunc("GET /api/cars/{car_id}/price-history", s.handleListPriceHistory)
	s.mux.HandleFunc("GET /api/search/cars", s.handleSearchCars)

	s.mux.HandleFunc("GET /api/advertisements", s.handleListAdvertisements)
	s.mux.HandleFunc("GET /api/advertisements/{ad_id}", s.handleGetAdvertisement)
	s.mux.HandleFunc("POST /api/advertisements", s.handleCreateAdvertisement)
	s.mux.HandleFunc("PUT /api/advertisements/{ad_id}", s.handleUpdateAdvertisement)
	s.mux.HandleFunc("DELETE /api/advertisements/{ad_id}", s.handleDeleteAdvertisement)

	s.mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	s.mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	s.mux.HandleFunc("GET /api/transactions/{transaction_id}", s.handleGetTransaction)
	s.mux.HandleFunc("PUT /api/transactions/{transaction_id}/status", s.handleUpdateTransactionStatus)
}

// resolveSessionToken reads the session cookie, falling back to the
// X-Session-Token header for non-browser clients.
func resolveSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

// authenticate resolves the request's session to a principal. Gate
// failures are already mapped by the account error writer.
func (s *Server) authenticate(r *http.Request) (accountentities.Principal, error) {
	return s.accounts.Handler.AuthenticateHandler(r.Context(), resolveSessionToken(r))
}

// requireRoles authenticates and then asserts membership in any of the
// required roles. An empty required set admits any principal.
func (s *Server) requireRoles(w http.ResponseWriter, r *http.Request, required ...string) (accountentities.Principal, bool) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeAccountDomainError(w, err)
		return accountentities.Principal{}, false
	}
	if err := s.accounts.Service.Authorize(principal, required...); err != nil {
		writeAccountDomainError(w, err)
		return accountentities.Principal{}, false
	}
	return principal, true
}

// listingActor translates the principal into the listing context's
// actor shape. Admin and Senior bypass ownership checks.
func listingActor(principal accountentities.Principal) listingports.Actor {
	return listingports.Actor{
		UserID:     principal.UserID,
		Privileged: principal.HasAnyRole(accountports.RoleAdmin, accountports.RoleSenior),
	}
}

func tradeActor(principal accountentities.Principal) tradeports.Actor {
	return tradeports.Actor{
		UserID:     principal.UserID,
		Privileged: principal.HasAnyRole(accountports.RoleAdmin, accountports.RoleSenior),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
