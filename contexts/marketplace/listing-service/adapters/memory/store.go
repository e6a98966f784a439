package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"carmarket/contexts/marketplace/listing-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	"carmarket/contexts/marketplace/listing-service/ports"
)

// Store keeps one mutex over the whole catalog so compound writes are
// naturally atomic.
type Store struct {
	mu sync.RWMutex

	carsByID        map[string]entities.Car
	adsByID         map[string]entities.Advertisement
	adIDByCarID     map[string]string
	mobilesByUserID map[string]string
	imagesByCarID   map[string][]entities.CarImage
	pricesByCarID   map[string][]entities.PriceRecord
	sequence        uint64

	failAdvertisementInsert bool
}

func NewStore() *Store {
	return &Store{
		carsByID:        make(map[string]entities.Car),
		adsByID:         make(map[string]entities.Advertisement),
		adIDByCarID:     make(map[string]string),
		mobilesByUserID: make(map[string]string),
		imagesByCarID:   make(map[string][]entities.CarImage),
		pricesByCarID:   make(map[string][]entities.PriceRecord),
		sequence:        1,
	}
}

// RegisterPublisherMobile teaches the store a user's mobile number so
// views can embed publisher_mobile without reaching into another context.
func (s *Store) RegisterPublisherMobile(userID string, mobileNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mobilesByUserID[userID] = mobileNumber
}

// FailNextAdvertisementInsert forces the advertisement half of the next
// compound create to fail, for atomicity tests.
func (s *Store) FailNextAdvertisementInsert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAdvertisementInsert = true
}

func (s *Store) CreateListing(ctx context.Context, listing ports.NewListing) (ports.AdvertisementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, listed := s.adIDByCarID[listing.Car.CarID]; listed {
		return ports.AdvertisementView{}, domainerrors.ErrCarAlreadyListed
	}
	if s.failAdvertisementInsert {
		s.failAdvertisementInsert = false
		return ports.AdvertisementView{}, fmt.Errorf("advertisement insert failed")
	}

	s.carsByID[listing.Car.CarID] = listing.Car
	s.adsByID[listing.Advertisement.AdvertisementID] = listing.Advertisement
	s.adIDByCarID[listing.Car.CarID] = listing.Advertisement.AdvertisementID
	s.pricesByCarID[listing.Car.CarID] = append(s.pricesByCarID[listing.Car.CarID], listing.InitialPrice)
	return s.viewLocked(listing.Advertisement.AdvertisementID)
}

func (s *Store) GetAdvertisement(ctx context.Context, advertisementID string) (ports.AdvertisementView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked(advertisementID)
}

func (s *Store) GetAdvertisementByCar(ctx context.Context, carID string) (ports.AdvertisementView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adID, ok := s.adIDByCarID[carID]
	if !ok {
		return ports.AdvertisementView{}, domainerrors.ErrAdvertisementNotFound
	}
	return s.viewLocked(adID)
}

func (s *Store) ListAdvertisements(ctx context.Context) ([]ports.AdvertisementView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.AdvertisementView, 0, len(s.adsByID))
	for adID := range s.adsByID {
		view, err := s.viewLocked(adID)
		if err != nil {
			return nil, err
		}
		items = append(items, view)
	}
	sort.Slice(items, func(i int, j int) bool {
		return items[i].Advertisement.AdvertisementID < items[j].Advertisement.AdvertisementID
	})
	return items, nil
}

func (s *Store) SaveListing(ctx context.Context, view ports.AdvertisementView, priceRecord *entities.PriceRecord) (ports.AdvertisementView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.adsByID[view.Advertisement.AdvertisementID]; !ok {
		return ports.AdvertisementView{}, domainerrors.ErrAdvertisementNotFound
	}
	s.adsByID[view.Advertisement.AdvertisementID] = view.Advertisement
	s.carsByID[view.Car.CarID] = view.Car
	if priceRecord != nil {
		s.pricesByCarID[view.Car.CarID] = append(s.pricesByCarID[view.Car.CarID], *priceRecord)
	}
	return s.viewLocked(view.Advertisement.AdvertisementID)
}

func (s *Store) DeleteListing(ctx context.Context, advertisementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.adsByID[advertisementID]
	if !ok {
		return domainerrors.ErrAdvertisementNotFound
	}
	delete(s.adsByID, advertisementID)
	delete(s.adIDByCarID, ad.CarID)
	delete(s.carsByID, ad.CarID)
	delete(s.imagesByCarID, ad.CarID)
	delete(s.pricesByCarID, ad.CarID)
	return nil
}

func (s *Store) GetCar(ctx context.Context, carID string) (entities.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	car, ok := s.carsByID[carID]
	if !ok {
		return entities.Car{}, domainerrors.ErrCarNotFound
	}
	return car, nil
}

func (s *Store) ListCars(ctx context.Context) ([]entities.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedCarsLocked(s.carsByID), nil
}

func (s *Store) SearchCars(ctx context.Context, filter ports.SearchFilter) ([]entities.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make(map[string]entities.Car)
	for carID, car := range s.carsByID {
		adID, listed := s.adIDByCarID[carID]
		if !listed {
			continue
		}
		ad := s.adsByID[adID]

		if filter.MinPrice != nil && ad.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && ad.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.Brand != "" && !strings.Contains(strings.ToLower(car.Make), strings.ToLower(filter.Brand)) {
			continue
		}
		if filter.Color != "" && !strings.Contains(strings.ToLower(car.Color), strings.ToLower(filter.Color)) {
			continue
		}
		if filter.Status != "" && car.Status != filter.Status {
			continue
		}
		matches[carID] = car
	}
	return s.sortedCarsLocked(matches), nil
}

func (s *Store) RelatedCars(ctx context.Context, carID string, limit int) ([]entities.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	main, ok := s.carsByID[carID]
	if !ok {
		return nil, domainerrors.ErrCarNotFound
	}
	matches := make(map[string]entities.Car)
	for otherID, other := range s.carsByID {
		if otherID != carID && other.Make == main.Make {
			matches[otherID] = other
		}
	}
	items := s.sortedCarsLocked(matches)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AddCarImage(ctx context.Context, image entities.CarImage) (entities.CarImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carsByID[image.CarID]; !ok {
		return entities.CarImage{}, domainerrors.ErrCarNotFound
	}
	s.imagesByCarID[image.CarID] = append(s.imagesByCarID[image.CarID], image)
	return image, nil
}

func (s *Store) ListCarImages(ctx context.Context, carID string) ([]entities.CarImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.CarImage(nil), s.imagesByCarID[carID]...), nil
}

func (s *Store) ListPriceHistory(ctx context.Context, carID string) ([]entities.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.PriceRecord(nil), s.pricesByCarID[carID]...), nil
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("lst_%d", n), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) viewLocked(advertisementID string) (ports.AdvertisementView, error) {
	ad, ok := s.adsByID[advertisementID]
	if !ok {
		return ports.AdvertisementView{}, domainerrors.ErrAdvertisementNotFound
	}
	return ports.AdvertisementView{
		Advertisement:   ad,
		Car:             s.carsByID[ad.CarID],
		PublisherMobile: s.mobilesByUserID[ad.PublisherID],
	}, nil
}

func (s *Store) sortedCarsLocked(cars map[string]entities.Car) []entities.Car {
	items := make([]entities.Car, 0, len(cars))
	for _, car := range cars {
		items = append(items, car)
	}
	sort.Slice(items, func(i int, j int) bool {
		return items[i].CarID < items[j].CarID
	})
	return items
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
