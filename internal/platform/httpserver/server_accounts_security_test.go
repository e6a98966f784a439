package httpserver

import (
	"net/http"
	"strings"
	"testing"

	accountports "carmarket/contexts/identity-access/account-service/ports"
)

func TestRegisterDuplicateMobileConflicts(t *testing.T) {
	server := newTestServer()
	registerAndLogin(t, server, "09120000001")

	rr := doJSON(server, http.MethodPost, "/api/register", "", `{"mobile_number":"09120000001","password":"other456"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	server := newTestServer()
	registerAndLogin(t, server, "09120000001")

	rr := doJSON(server, http.MethodPost, "/api/login", "", `{"mobile_number":"09120000001","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	server := newTestServer()
	token, _ := registerAndLogin(t, server, "09120000001")
	if token == "" {
		t.Fatal("expected a session token in the login body")
	}

	rr := doJSON(server, http.MethodPost, "/api/login", "", `{"mobile_number":"09120000001","password":"secret123"}`)
	cookie := rr.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, sessionCookieName+"=") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server := newTestServer()
	token, _ := registerAndLogin(t, server, "09120000001")

	rr := doJSON(server, http.MethodPost, "/api/logout", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("logout failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/logout", token, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListUsersRequiresPrivilegedRole(t *testing.T) {
	server := newTestServer()

	rr := doJSON(server, http.MethodGet, "/api/users", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	token, _ := registerAndLogin(t, server, "09120000001")
	rr = doJSON(server, http.MethodGet, "/api/users", token, "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d body=%s", rr.Code, rr.Body.String())
	}

	adminToken, adminID := registerAndLogin(t, server, "09120000002")
	promote(t, server, adminID, accountports.RoleAdmin)
	rr = doJSON(server, http.MethodGet, "/api/users", adminToken, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeactivatedUserIsLoggedOutOnNextRequest(t *testing.T) {
	server := newTestServer()
	token, userID := registerAndLogin(t, server, "09120000001")
	adminToken, adminID := registerAndLogin(t, server, "09120000002")
	promote(t, server, adminID, accountports.RoleAdmin)

	rr := doJSON(server, http.MethodPut, "/api/users/"+userID+"/deactivate", adminToken, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("deactivate failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/logout", token, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated user, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGrantRoleEndpointGatedAndConflicts(t *testing.T) {
	server := newTestServer()
	userToken, userID := registerAndLogin(t, server, "09120000001")
	adminToken, adminID := registerAndLogin(t, server, "09120000002")
	promote(t, server, adminID, accountports.RoleAdmin)

	rr := doJSON(server, http.MethodPost, "/api/users/"+userID+"/roles", userToken, `{"role":"Seller"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/users/"+userID+"/roles", adminToken, `{"role":"Seller"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("grant failed: %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/users/"+userID+"/roles", adminToken, `{"role":"Seller"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate grant, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/users/"+userID+"/roles", adminToken, `{"role":"Owner"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d body=%s", rr.Code, rr.Body.String())
	}
}
