package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carmarket/contexts/marketplace/listing-service/application"
	"carmarket/contexts/marketplace/listing-service/domain/entities"
	"carmarket/contexts/marketplace/listing-service/ports"
	httptransport "carmarket/contexts/marketplace/listing-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateAdvertisementHandler(ctx context.Context, actor ports.Actor, req httptransport.CreateAdvertisementRequest) (httptransport.AdvertisementResponse, error) {
	view, err := h.Service.CreateAdvertisement(ctx, actor, application.NewListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CarMake:     req.Car.Make,
		CarModel:    req.Car.Model,
		CarYear:     req.Car.Year,
		CarColor:    req.Car.Color,
		CarStatus:   req.Car.Status,
	})
	if err != nil {
		return httptransport.AdvertisementResponse{}, err
	}
	return advertisementResponse(view), nil
}

func (h Handler) GetAdvertisementHandler(ctx context.Context, advertisementID string) (httptransport.AdvertisementResponse, error) {
	view, err := h.Service.GetAdvertisement(ctx, advertisementID)
	if err != nil {
		return httptransport.AdvertisementResponse{}, err
	}
	return advertisementResponse(view), nil
}

func (h Handler) ListAdvertisementsHandler(ctx context.Context) ([]httptransport.AdvertisementResponse, error) {
	views, err := h.Service.ListAdvertisements(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.AdvertisementResponse, 0, len(views))
	for _, view := range views {
		items = append(items, advertisementResponse(view))
	}
	return items, nil
}

func (h Handler) UpdateAdvertisementHandler(ctx context.Context, actor ports.Actor, advertisementID string, req httptransport.UpdateAdvertisementRequest) (httptransport.AdvertisementResponse, error) {
	patch := ports.AdvertisementPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	}
	if req.Car != nil {
		patch.Car = &ports.CarPatch{
			Make:   req.Car.Make,
			Model:  req.Car.Model,
			Year:   req.Car.Year,
			Color:  req.Car.Color,
			Status: req.Car.Status,
		}
	}
	view, err := h.Service.UpdateAdvertisement(ctx, actor, advertisementID, patch)
	if err != nil {
		return httptransport.AdvertisementResponse{}, err
	}
	return advertisementResponse(view), nil
}

func (h Handler) DeleteAdvertisementHandler(ctx context.Context, actor ports.Actor, advertisementID string) error {
	return h.Service.DeleteAdvertisement(ctx, actor, advertisementID)
}

func (h Handler) GetCarHandler(ctx context.Context, carID string) (httptransport.CarResponse, error) {
	car, err := h.Service.GetCar(ctx, carID)
	if err != nil {
		return httptransport.CarResponse{}, err
	}
	return carResponse(car), nil
}

func (h Handler) ListCarsHandler(ctx context.Context) ([]httptransport.CarResponse, error) {
	cars, err := h.Service.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	return carResponses(cars), nil
}

func (h Handler) SearchCarsHandler(ctx context.Context, filter ports.SearchFilter) ([]httptransport.CarResponse, error) {
	cars, err := h.Service.SearchCars(ctx, filter)
	if err != nil {
		return nil, err
	}
	return carResponses(cars), nil
}

func (h Handler) RelatedCarsHandler(ctx context.Context, carID string) ([]httptransport.CarResponse, error) {
	cars, err := h.Service.RelatedCars(ctx, carID)
	if err != nil {
		return nil, err
	}
	return carResponses(cars), nil
}

func (h Handler) AddCarImageHandler(ctx context.Context, actor ports.Actor, carID string, req httptransport.CarImageRequest) (httptransport.CarImageResponse, error) {
	image, err := h.Service.AddCarImage(ctx, actor, carID, req.ImageURL, req.Description)
	if err != nil {
		return httptransport.CarImageResponse{}, err
	}
	return httptransport.CarImageResponse{
		ID:          image.ImageID,
		CarID:       image.CarID,
		ImageURL:    image.ImageURL,
		Description: image.Description,
	}, nil
}

func (h Handler) ListCarImagesHandler(ctx context.Context, carID string) ([]httptransport.CarImageResponse, error) {
	images, err := h.Service.ListCarImages(ctx, carID)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.CarImageResponse, 0, len(images))
	for _, image := range images {
		items = append(items, httptransport.CarImageResponse{
			ID:          image.ImageID,
			CarID:       image.CarID,
			ImageURL:    image.ImageURL,
			Description: image.Description,
		})
	}
	return items, nil
}

func (h Handler) ListPriceHistoryHandler(ctx context.Context, carID string) ([]httptransport.PriceRecordResponse, error) {
	records, err := h.Service.ListPriceHistory(ctx, carID)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.PriceRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.PriceRecordResponse{
			ID:         record.RecordID,
			CarID:      record.CarID,
			Price:      record.Price.StringFixed(2),
			ChangeDate: record.ChangedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}

func advertisementResponse(view ports.AdvertisementView) httptransport.AdvertisementResponse {
	car := carResponse(view.Car)
	return httptransport.AdvertisementResponse{
		ID:              view.Advertisement.AdvertisementID,
		Title:           view.Advertisement.Title,
		Description:     view.Advertisement.Description,
		Price:           view.Advertisement.Price.StringFixed(2),
		Status:          view.Advertisement.Status,
		CreatedAt:       view.Advertisement.CreatedAt.UTC().Format(time.RFC3339),
		CarID:           view.Advertisement.CarID,
		UserID:          view.Advertisement.PublisherID,
		CarDetails:      &car,
		PublisherMobile: strings.TrimSpace(view.PublisherMobile),
	}
}

func carResponse(car entities.Car) httptransport.CarResponse {
	return httptransport.CarResponse{
		ID:     car.CarID,
		Make:   car.Make,
		Model:  car.Model,
		Year:   car.Year,
		Color:  car.Color,
		Status: car.Status,
	}
}

func carResponses(cars []entities.Car) []httptransport.CarResponse {
	items := make([]httptransport.CarResponse, 0, len(cars))
	for _, car := range cars {
		items = append(items, carResponse(car))
	}
	return items
}
