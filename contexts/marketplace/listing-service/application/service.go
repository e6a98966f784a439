package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"carmarket/contexts/marketplace/listing-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	"carmarket/contexts/marketplace/listing-service/ports"

	"github.com/shopspring/decimal"
)

const relatedCarsLimit = 5

type Service struct {
	Repo   ports.Repository
	Trades ports.TradeGuard
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

// NewListingInput carries the fields for the compound create. The acting
// user becomes the publisher.
type NewListingInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CarMake     string
	CarModel    string
	CarYear     int
	CarColor    string
	CarStatus   string
}

func (s Service) CreateAdvertisement(ctx context.Context, actor ports.Actor, input NewListingInput) (ports.AdvertisementView, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.CarMake = strings.TrimSpace(input.CarMake)
	input.CarModel = strings.TrimSpace(input.CarModel)
	input.CarColor = strings.TrimSpace(input.CarColor)
	if input.Title == "" || input.CarMake == "" || input.CarModel == "" ||
		input.CarColor == "" || input.CarYear == 0 || input.Price.LessThanOrEqual(decimal.Zero) {
		return ports.AdvertisementView{}, domainerrors.ErrInvalidRequest
	}
	carStatus := strings.TrimSpace(input.CarStatus)
	if carStatus == "" {
		carStatus = entities.CarStatusDefault
	}

	carID, err := s.IDs.NewID(ctx)
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	adID, err := s.IDs.NewID(ctx)
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	recordID, err := s.IDs.NewID(ctx)
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	now := s.now()

	view, err := s.Repo.CreateListing(ctx, ports.NewListing{
		Car: entities.Car{
			CarID:  carID,
			Make:   input.CarMake,
			Model:  input.CarModel,
			Year:   input.CarYear,
			Color:  input.CarColor,
			Status: carStatus,
		},
		Advertisement: entities.Advertisement{
			AdvertisementID: adID,
			Title:           input.Title,
			Description:     input.Description,
			Price:           input.Price,
			Status:          entities.AdvertisementStatusDefault,
			CreatedAt:       now,
			CarID:           carID,
			PublisherID:     actor.UserID,
		},
		InitialPrice: entities.PriceRecord{
			RecordID:  recordID,
			CarID:     carID,
			Price:     input.Price,
			ChangedAt: now,
		},
	})
	if err != nil {
		return ports.AdvertisementView{}, err
	}

	resolveLogger(s.Logger).Info("advertisement created",
		"event", "advertisement_created",
		"module", "marketplace/listing-service",
		"layer", "application",
		"advertisement_id", view.Advertisement.AdvertisementID,
		"car_id", view.Car.CarID,
		"publisher_id", actor.UserID,
	)
	return view, nil
}

func (s Service) GetAdvertisement(ctx context.Context, advertisementID string) (ports.AdvertisementView, error) {
	return s.Repo.GetAdvertisement(ctx, strings.TrimSpace(advertisementID))
}

func (s Service) ListAdvertisements(ctx context.Context) ([]ports.AdvertisementView, error) {
	return s.Repo.ListAdvertisements(ctx)
}

// UpdateAdvertisement applies a partial patch under the ownership rule:
// only the publisher or a privileged actor may mutate a listing.
func (s Service) UpdateAdvertisement(ctx context.Context, actor ports.Actor, advertisementID string, patch ports.AdvertisementPatch) (ports.AdvertisementView, error) {
	view, err := s.Repo.GetAdvertisement(ctx, strings.TrimSpace(advertisementID))
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	if !s.canMutate(actor, view.Advertisement) {
		return ports.AdvertisementView{}, domainerrors.ErrForbidden
	}

	var priceRecord *entities.PriceRecord
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ports.AdvertisementView{}, domainerrors.ErrInvalidRequest
		}
		view.Advertisement.Title = title
	}
	if patch.Description != nil {
		view.Advertisement.Description = *patch.Description
	}
	if patch.Status != nil {
		view.Advertisement.Status = strings.TrimSpace(*patch.Status)
	}
	if patch.Price != nil {
		if patch.Price.LessThanOrEqual(decimal.Zero) {
			return ports.AdvertisementView{}, domainerrors.ErrInvalidRequest
		}
		if !patch.Price.Equal(view.Advertisement.Price) {
			recordID, err := s.IDs.NewID(ctx)
			if err != nil {
				return ports.AdvertisementView{}, err
			}
			priceRecord = &entities.PriceRecord{
				RecordID:  recordID,
				CarID:     view.Car.CarID,
				Price:     *patch.Price,
				ChangedAt: s.now(),
			}
		}
		view.Advertisement.Price = *patch.Price
	}
	if patch.Car != nil {
		if patch.Car.Make != nil {
			view.Car.Make = strings.TrimSpace(*patch.Car.Make)
		}
		if patch.Car.Model != nil {
			view.Car.Model = strings.TrimSpace(*patch.Car.Model)
		}
		if patch.Car.Year != nil {
			view.Car.Year = *patch.Car.Year
		}
		if patch.Car.Color != nil {
			view.Car.Color = strings.TrimSpace(*patch.Car.Color)
		}
		if patch.Car.Status != nil {
			view.Car.Status = strings.TrimSpace(*patch.Car.Status)
		}
	}

	return s.Repo.SaveListing(ctx, view, priceRecord)
}

// DeleteAdvertisement cascades to the car and its history children. A car
// referenced by any transaction blocks deletion; the trade record is the
// audit trail and wins over the cascade.
func (s Service) DeleteAdvertisement(ctx context.Context, actor ports.Actor, advertisementID string) error {
	view, err := s.Repo.GetAdvertisement(ctx, strings.TrimSpace(advertisementID))
	if err != nil {
		return err
	}
	if !s.canMutate(actor, view.Advertisement) {
		return domainerrors.ErrForbidden
	}
	if s.Trades != nil {
		referenced, err := s.Trades.HasTransactionForCar(ctx, view.Car.CarID)
		if err != nil {
			return err
		}
		if referenced {
			return domainerrors.ErrCarHasTransaction
		}
	}
	if err := s.Repo.DeleteListing(ctx, view.Advertisement.AdvertisementID); err != nil {
		return err
	}

	resolveLogger(s.Logger).Info("advertisement deleted",
		"event", "advertisement_deleted",
		"module", "marketplace/listing-service",
		"layer", "application",
		"advertisement_id", view.Advertisement.AdvertisementID,
		"car_id", view.Car.CarID,
	)
	return nil
}

func (s Service) GetCar(ctx context.Context, carID string) (entities.Car, error) {
	return s.Repo.GetCar(ctx, strings.TrimSpace(carID))
}

func (s Service) ListCars(ctx context.Context) ([]entities.Car, error) {
	return s.Repo.ListCars(ctx)
}

func (s Service) SearchCars(ctx context.Context, filter ports.SearchFilter) ([]entities.Car, error) {
	filter.Brand = strings.TrimSpace(filter.Brand)
	filter.Color = strings.TrimSpace(filter.Color)
	filter.Status = strings.TrimSpace(filter.Status)
	return s.Repo.SearchCars(ctx, filter)
}

func (s Service) RelatedCars(ctx context.Context, carID string) ([]entities.Car, error) {
	carID = strings.TrimSpace(carID)
	if _, err := s.Repo.GetCar(ctx, carID); err != nil {
		return nil, err
	}
	return s.Repo.RelatedCars(ctx, carID, relatedCarsLimit)
}

// AddCarImage is gated by the same ownership rule as advertisement
// mutation, resolved through the car's advertisement.
func (s Service) AddCarImage(ctx context.Context, actor ports.Actor, carID string, imageURL string, description string) (entities.CarImage, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return entities.CarImage{}, domainerrors.ErrInvalidRequest
	}
	car, err := s.Repo.GetCar(ctx, strings.TrimSpace(carID))
	if err != nil {
		return entities.CarImage{}, err
	}
	view, err := s.Repo.GetAdvertisementByCar(ctx, car.CarID)
	if err != nil {
		return entities.CarImage{}, err
	}
	if !s.canMutate(actor, view.Advertisement) {
		return entities.CarImage{}, domainerrors.ErrForbidden
	}

	imageID, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.CarImage{}, err
	}
	return s.Repo.AddCarImage(ctx, entities.CarImage{
		ImageID:     imageID,
		CarID:       car.CarID,
		ImageURL:    imageURL,
		Description: strings.TrimSpace(description),
	})
}

func (s Service) ListCarImages(ctx context.Context, carID string) ([]entities.CarImage, error) {
	carID = strings.TrimSpace(carID)
	if _, err := s.Repo.GetCar(ctx, carID); err != nil {
		return nil, err
	}
	return s.Repo.ListCarImages(ctx, carID)
}

func (s Service) ListPriceHistory(ctx context.Context, carID string) ([]entities.PriceRecord, error) {
	carID = strings.TrimSpace(carID)
	if _, err := s.Repo.GetCar(ctx, carID); err != nil {
		return nil, err
	}
	return s.Repo.ListPriceHistory(ctx, carID)
}

// CarExists and AdvertisementByCar are the directory reads the trade
// context consumes when opening a transaction.
func (s Service) CarExists(ctx context.Context, carID string) (bool, error) {
	_, err := s.Repo.GetCar(ctx, strings.TrimSpace(carID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrCarNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s Service) AdvertisementByCar(ctx context.Context, carID string) (publisherID string, carMake string, found bool, err error) {
	view, err := s.Repo.GetAdvertisementByCar(ctx, strings.TrimSpace(carID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrAdvertisementNotFound) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return view.Advertisement.PublisherID, view.Car.Make, true, nil
}

func (s Service) canMutate(actor ports.Actor, ad entities.Advertisement) bool {
	if actor.Privileged {
		return true
	}
	return ad.PublisherID != "" && ad.PublisherID == actor.UserID
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
