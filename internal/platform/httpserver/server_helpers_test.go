package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	accountservice "carmarket/contexts/identity-access/account-service"
	listingservice "carmarket/contexts/marketplace/listing-service"
	tradeservice "carmarket/contexts/marketplace/trade-service"
	trademem "carmarket/contexts/marketplace/trade-service/adapters/memory"
)

// newTestServer wires the three contexts onto memory stores, with the
// trade store doubling as the listing context's transaction guard.
func newTestServer() *Server {
	logger := slog.Default()
	accounts := accountservice.NewInMemoryModule(logger)
	tradeStore := trademem.NewStore()
	listings := listingservice.NewInMemoryModule(tradeStore, logger)
	trades := tradeservice.NewModule(tradeservice.Dependencies{
		Repository: tradeStore,
		Listings:   listings.Service,
		Users:      accounts.Service,
		Clock:      tradeStore,
		IDs:        tradeStore,
		Logger:     logger,
	})
	trades.Store = tradeStore
	return New(accounts, listings, trades, logger, ":0")
}

func doJSON(server *Server, method string, target string, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

// registerAndLogin creates a user through the public endpoints and
// returns its session token and user id.
func registerAndLogin(t *testing.T, server *Server, mobile string) (string, string) {
	t.Helper()
	body := fmt.Sprintf(`{"mobile_number":%q,"password":"secret123"}`, mobile)
	rr := doJSON(server, http.MethodPost, "/api/register", "", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/login", "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionToken string `json:"session_token"`
		UserID       string `json:"user_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.SessionToken, resp.UserID
}

// promote grants a role directly on the account store, bypassing the
// admin-gated endpoint, to build fixtures.
func promote(t *testing.T, server *Server, userID string, role string) {
	t.Helper()
	if err := server.accounts.Store.GrantRole(context.Background(), userID, role); err != nil {
		t.Fatalf("grant %s to %s: %v", role, userID, err)
	}
}

func createListing(t *testing.T, server *Server, token string, carMake string) (adID string, carID string) {
	t.Helper()
	body := fmt.Sprintf(`{"title":"For sale","description":"x","price":12000,"car":{"make":%q,"model":"Base","year":2020,"color":"white"}}`, carMake)
	rr := doJSON(server, http.MethodPost, "/api/advertisements", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create advertisement failed: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		ID    string `json:"id"`
		CarID string `json:"car_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode advertisement response: %v", err)
	}
	return resp.ID, resp.CarID
}
