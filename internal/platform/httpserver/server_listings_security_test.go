package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestCreateAdvertisementRequiresSession(t *testing.T) {
	server := newTestServer()
	body := `{"title":"For sale","description":"x","price":12000,"car":{"make":"Toyota","model":"Corolla","year":2020,"color":"white"}}`

	rr := doJSON(server, http.MethodPost, "/api/advertisements", "", body)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateAdvertisementReturnsCarDetails(t *testing.T) {
	server := newTestServer()
	token, userID := registerAndLogin(t, server, "09120000001")

	body := `{"title":"For sale","description":"x","price":12000,"car":{"make":"Toyota","model":"Corolla","year":2020,"color":"white"}}`
	rr := doJSON(server, http.MethodPost, "/api/advertisements", token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		UserID     string `json:"user_id"`
		Price      string `json:"price"`
		CarDetails struct {
			Make string `json:"make"`
		} `json:"car_details"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CarDetails.Make != "Toyota" {
		t.Fatalf("expected car details embedded, got %+v", resp)
	}
	if resp.UserID != userID {
		t.Fatalf("expected creator as publisher, got %q", resp.UserID)
	}
	if resp.Price != "12000.00" {
		t.Fatalf("expected fixed-point price, got %q", resp.Price)
	}
}

func TestUpdateAdvertisementEnforcesOwnership(t *testing.T) {
	server := newTestServer()
	ownerToken, _ := registerAndLogin(t, server, "09120000001")
	otherToken, _ := registerAndLogin(t, server, "09120000002")
	adID, _ := createListing(t, server, ownerToken, "Toyota")

	rr := doJSON(server, http.MethodPut, "/api/advertisements/"+adID, otherToken, `{"title":"Hijacked"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPut, "/api/advertisements/"+adID, ownerToken, `{"title":"Still mine"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteAdvertisementReturnsNoContent(t *testing.T) {
	server := newTestServer()
	token, _ := registerAndLogin(t, server, "09120000001")
	adID, carID := createListing(t, server, token, "Toyota")

	rr := doJSON(server, http.MethodDelete, "/api/advertisements/"+adID, token, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodGet, "/api/cars/"+carID, "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected cascaded car deletion, got %d", rr.Code)
	}
}

func TestGetAdvertisementUnknownIsNotFound(t *testing.T) {
	server := newTestServer()

	rr := doJSON(server, http.MethodGet, "/api/advertisements/ad-missing", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSearchCarsPublicAndValidated(t *testing.T) {
	server := newTestServer()
	token, _ := registerAndLogin(t, server, "09120000001")
	createListing(t, server, token, "Honda")

	rr := doJSON(server, http.MethodGet, "/api/search/cars?brand=hon&max_price=15000", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var cars []struct {
		Make string `json:"make"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &cars); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(cars) != 1 || cars[0].Make != "Honda" {
		t.Fatalf("expected the honda, got %v", cars)
	}

	rr = doJSON(server, http.MethodGet, "/api/search/cars?min_price=abc", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAddCarImageRequiresSessionAndOwnership(t *testing.T) {
	server := newTestServer()
	ownerToken, _ := registerAndLogin(t, server, "09120000001")
	otherToken, _ := registerAndLogin(t, server, "09120000002")
	_, carID := createListing(t, server, ownerToken, "Toyota")

	body := `{"image_url":"https://img.example/1.jpg"}`
	rr := doJSON(server, http.MethodPost, "/api/cars/"+carID+"/images", "", body)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/cars/"+carID+"/images", otherToken, body)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodPost, "/api/cars/"+carID+"/images", ownerToken, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for owner, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(server, http.MethodGet, "/api/cars/"+carID+"/images", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected public image listing, got %d body=%s", rr.Code, rr.Body.String())
	}
}
