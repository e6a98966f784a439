package application

import (
	"context"
	"errors"
	"testing"

	"carmarket/contexts/marketplace/listing-service/adapters/memory"
	domainerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	"carmarket/contexts/marketplace/listing-service/ports"

	"github.com/shopspring/decimal"
)

type stubTradeGuard struct {
	referenced map[string]bool
}

func (g stubTradeGuard) HasTransactionForCar(ctx context.Context, carID string) (bool, error) {
	return g.referenced[carID], nil
}

func newTestService(trades ports.TradeGuard) (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Repo:   store,
		Trades: trades,
		Clock:  store,
		IDs:    store,
	}
	return service, store
}

func listingInput(carMake string, color string, price int64) NewListingInput {
	return NewListingInput{
		Title:       "For sale",
		Description: "x",
		Price:       decimal.NewFromInt(price),
		CarMake:     carMake,
		CarModel:    "Base",
		CarYear:     2020,
		CarColor:    color,
	}
}

func TestCreateAdvertisementBuildsCompoundListing(t *testing.T) {
	service, store := newTestService(nil)
	store.RegisterPublisherMobile("seller-1", "09120000010")

	view, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, NewListingInput{
		Title:       "For sale",
		Description: "x",
		Price:       decimal.NewFromInt(12000),
		CarMake:     "Toyota",
		CarModel:    "Corolla",
		CarYear:     2020,
		CarColor:    "white",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.Car.Make != "Toyota" {
		t.Fatalf("expected car make Toyota, got %s", view.Car.Make)
	}
	if view.Car.Status != "used" {
		t.Fatalf("expected default car status used, got %s", view.Car.Status)
	}
	if view.Advertisement.Status != "active" {
		t.Fatalf("expected default ad status active, got %s", view.Advertisement.Status)
	}
	if view.Advertisement.PublisherID != "seller-1" {
		t.Fatalf("expected publisher seller-1, got %s", view.Advertisement.PublisherID)
	}
	if view.PublisherMobile != "09120000010" {
		t.Fatalf("expected publisher mobile, got %q", view.PublisherMobile)
	}

	history, err := service.ListPriceHistory(context.Background(), view.Car.CarID)
	if err != nil {
		t.Fatalf("price history failed: %v", err)
	}
	if len(history) != 1 || !history[0].Price.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected one initial price record, got %v", history)
	}
}

func TestCreateAdvertisementRollsBackCarOnFailure(t *testing.T) {
	service, store := newTestService(nil)
	store.FailNextAdvertisementInsert()

	_, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Toyota", "white", 12000))
	if err == nil {
		t.Fatal("expected create to fail")
	}
	cars, err := service.ListCars(context.Background())
	if err != nil {
		t.Fatalf("list cars failed: %v", err)
	}
	if len(cars) != 0 {
		t.Fatalf("expected no car rows after rollback, got %d", len(cars))
	}
}

func TestUpdateAdvertisementOwnershipRule(t *testing.T) {
	service, _ := newTestService(nil)

	view, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	adID := view.Advertisement.AdvertisementID
	title := "Updated"

	_, err = service.UpdateAdvertisement(context.Background(), ports.Actor{UserID: "someone-else"}, adID, ports.AdvertisementPatch{Title: &title})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := service.UpdateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, adID, ports.AdvertisementPatch{Title: &title})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Advertisement.Title != "Updated" {
		t.Fatalf("expected updated title, got %s", updated.Advertisement.Title)
	}

	other := "Admin edit"
	if _, err := service.UpdateAdvertisement(context.Background(), ports.Actor{UserID: "admin-1", Privileged: true}, adID, ports.AdvertisementPatch{Title: &other}); err != nil {
		t.Fatalf("privileged update failed: %v", err)
	}
}

func TestUpdateAdvertisementPriceChangeAppendsHistory(t *testing.T) {
	service, _ := newTestService(nil)

	view, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	newPrice := decimal.NewFromInt(9500)
	if _, err := service.UpdateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, view.Advertisement.AdvertisementID, ports.AdvertisementPatch{Price: &newPrice}); err != nil {
		t.Fatalf("price update failed: %v", err)
	}

	history, err := service.ListPriceHistory(context.Background(), view.Car.CarID)
	if err != nil {
		t.Fatalf("price history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two price records, got %d", len(history))
	}
	if !history[1].Price.Equal(newPrice) {
		t.Fatalf("expected latest price 9500, got %s", history[1].Price)
	}
}

func TestDeleteAdvertisementCascadesAndRespectsTransactions(t *testing.T) {
	guard := stubTradeGuard{referenced: map[string]bool{}}
	service, _ := newTestService(guard)

	first, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "blue", 20000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	guard.referenced[second.Car.CarID] = true

	if err := service.DeleteAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, first.Advertisement.AdvertisementID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := service.GetCar(context.Background(), first.Car.CarID); !errors.Is(err, domainerrors.ErrCarNotFound) {
		t.Fatalf("expected cascaded car deletion, got %v", err)
	}

	err = service.DeleteAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, second.Advertisement.AdvertisementID)
	if !errors.Is(err, domainerrors.ErrCarHasTransaction) {
		t.Fatalf("expected transaction-referenced deletion block, got %v", err)
	}
}

func TestSearchCarsFiltersConjunctively(t *testing.T) {
	service, _ := newTestService(nil)

	red, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "blue", 20000)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	maxPrice := decimal.NewFromInt(15000)
	results, err := service.SearchCars(context.Background(), ports.SearchFilter{Brand: "Honda", MaxPrice: &maxPrice})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].CarID != red.Car.CarID {
		t.Fatalf("expected only the red honda, got %v", results)
	}

	// Case-insensitive substring match on make.
	results, err = service.SearchCars(context.Background(), ports.SearchFilter{Brand: "hond"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both hondas, got %d", len(results))
	}
}

func TestRelatedCarsSameMakeExcludingSelf(t *testing.T) {
	service, _ := newTestService(nil)

	main, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "grey", 11000)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Toyota", "white", 9000)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	related, err := service.RelatedCars(context.Background(), main.Car.CarID)
	if err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(related) != 5 {
		t.Fatalf("expected related capped at 5, got %d", len(related))
	}
	for i, car := range related {
		if car.CarID == main.Car.CarID {
			t.Fatalf("related must exclude the car itself")
		}
		if car.Make != "Honda" {
			t.Fatalf("expected same make, got %s", car.Make)
		}
		if i > 0 && related[i-1].CarID >= car.CarID {
			t.Fatalf("expected ascending car id order")
		}
	}
}

func TestAddCarImageRequiresOwnership(t *testing.T) {
	service, _ := newTestService(nil)

	view, err := service.CreateAdvertisement(context.Background(), ports.Actor{UserID: "seller-1"}, listingInput("Honda", "red", 10000))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = service.AddCarImage(context.Background(), ports.Actor{UserID: "stranger"}, view.Car.CarID, "https://img.example/1.jpg", "front")
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.AddCarImage(context.Background(), ports.Actor{UserID: "seller-1"}, view.Car.CarID, "https://img.example/1.jpg", "front"); err != nil {
		t.Fatalf("owner image add failed: %v", err)
	}

	images, err := service.ListCarImages(context.Background(), view.Car.CarID)
	if err != nil {
		t.Fatalf("list images failed: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected one image, got %d", len(images))
	}
}
