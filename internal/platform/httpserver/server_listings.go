package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accountports "carmarket/contexts/identity-access/account-service/ports"
	listingerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	listingports "carmarket/contexts/marketplace/listing-service/ports"
	listinghttp "carmarket/contexts/marketplace/listing-service/transport/http"

	"github.com/shopspring/decimal"
)

// advertisementMutationRoles is the coarse route gate; the ownership
// rule narrows further inside the listing service.
var advertisementMutationRoles = []string{
	accountports.RoleSystem,
	accountports.RoleAdmin,
	accountports.RoleSenior,
	accountports.RoleUser,
}

func (s *Server) handleCreateAdvertisement(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, advertisementMutationRoles...)
	if !ok {
		return
	}
	var req listinghttp.CreateAdvertisementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.listings.Handler.CreateAdvertisementHandler(r.Context(), listingActor(principal), req)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAdvertisement(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.GetAdvertisementHandler(r.Context(), r.PathValue("ad_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAdvertisements(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.ListAdvertisementsHandler(r.Context())
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateAdvertisement(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, advertisementMutationRoles...)
	if !ok {
		return
	}
	var req listinghttp.UpdateAdvertisementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.listings.Handler.UpdateAdvertisementHandler(r.Context(), listingActor(principal), r.PathValue("ad_id"), req)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAdvertisement(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r, advertisementMutationRoles...)
	if !ok {
		return
	}
	if err := s.listings.Handler.DeleteAdvertisementHandler(r.Context(), listingActor(principal), r.PathValue("ad_id")); err != nil {
		writeListingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.GetCarHandler(r.Context(), r.PathValue("car_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.ListCarsHandler(r.Context())
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchCars(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := listingports.SearchFilter{
		Brand:  query.Get("brand"),
		Color:  query.Get("color"),
		Status: query.Get("status"),
	}
	if raw := query.Get("min_price"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			writeListingError(w, http.StatusBadRequest, "invalid_min_price", "min_price must be a number")
			return
		}
		filter.MinPrice = &value
	}
	if raw := query.Get("max_price"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			writeListingError(w, http.StatusBadRequest, "invalid_max_price", "max_price must be a number")
			return
		}
		filter.MaxPrice = &value
	}

	resp, err := s.listings.Handler.SearchCarsHandler(r.Context(), filter)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRelatedCars(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.RelatedCarsHandler(r.Context(), r.PathValue("car_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCarImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requireRoles(w, r)
	if !ok {
		return
	}
	var req listinghttp.CarImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeListingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.listings.Handler.AddCarImageHandler(r.Context(), listingActor(principal), r.PathValue("car_id"), req)
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCarImages(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.ListCarImagesHandler(r.Context(), r.PathValue("car_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPriceHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.listings.Handler.ListPriceHistoryHandler(r.Context(), r.PathValue("car_id"))
	if err != nil {
		writeListingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeListingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listingerrors.ErrForbidden):
		writeListingError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, listingerrors.ErrInvalidRequest):
		writeListingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, listingerrors.ErrCarNotFound),
		errors.Is(err, listingerrors.ErrAdvertisementNotFound):
		writeListingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, listingerrors.ErrCarAlreadyListed),
		errors.Is(err, listingerrors.ErrCarHasTransaction):
		writeListingError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeListingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeListingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, listinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
