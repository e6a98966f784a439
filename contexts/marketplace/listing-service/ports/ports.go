package ports

import (
	"context"
	"time"

	"carmarket/contexts/marketplace/listing-service/domain/entities"

	"github.com/shopspring/decimal"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Actor is the slice of the authenticated principal this context needs:
// who is acting, and whether their role set bypasses the ownership rule.
type Actor struct {
	UserID     string
	Privileged bool
}

// AdvertisementView is an advertisement joined with its car and the
// publisher's mobile number, the shape every read endpoint serves.
type AdvertisementView struct {
	Advertisement   entities.Advertisement
	Car             entities.Car
	PublisherMobile string
}

// NewListing is the compound creation input. Both rows plus the initial
// price history entry are written in one storage transaction.
type NewListing struct {
	Car           entities.Car
	Advertisement entities.Advertisement
	InitialPrice  entities.PriceRecord
}

// CarPatch applies partial updates to the car nested in an advertisement
// update. Nil fields are left unchanged.
type CarPatch struct {
	Make   *string
	Model  *string
	Year   *int
	Color  *string
	Status *string
}

// AdvertisementPatch applies partial updates to an advertisement.
type AdvertisementPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Status      *string
	Car         *CarPatch
}

// SearchFilter is a conjunctive filter over cars joined to their
// advertisements. Nil/empty members are skipped.
type SearchFilter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Brand    string
	Color    string
	Status   string
}

type Repository interface {
	// CreateListing writes car, advertisement, and initial price history
	// atomically; a failure of any insert rolls back all of them.
	CreateListing(ctx context.Context, listing NewListing) (AdvertisementView, error)
	GetAdvertisement(ctx context.Context, advertisementID string) (AdvertisementView, error)
	GetAdvertisementByCar(ctx context.Context, carID string) (AdvertisementView, error)
	ListAdvertisements(ctx context.Context) ([]AdvertisementView, error)
	// SaveListing persists an updated advertisement+car pair, appending a
	// price history row when priceRecord is non-nil, atomically.
	SaveListing(ctx context.Context, view AdvertisementView, priceRecord *entities.PriceRecord) (AdvertisementView, error)
	// DeleteListing removes the advertisement and cascades to the car and
	// its history children.
	DeleteListing(ctx context.Context, advertisementID string) error

	GetCar(ctx context.Context, carID string) (entities.Car, error)
	ListCars(ctx context.Context) ([]entities.Car, error)
	SearchCars(ctx context.Context, filter SearchFilter) ([]entities.Car, error)
	// RelatedCars returns up to limit other cars of the same make,
	// ascending by car ID.
	RelatedCars(ctx context.Context, carID string, limit int) ([]entities.Car, error)

	AddCarImage(ctx context.Context, image entities.CarImage) (entities.CarImage, error)
	ListCarImages(ctx context.Context, carID string) ([]entities.CarImage, error)
	ListPriceHistory(ctx context.Context, carID string) ([]entities.PriceRecord, error)
}

// TradeGuard asks the trade context whether a car is referenced by any
// transaction; such cars cannot have their listing deleted.
type TradeGuard interface {
	HasTransactionForCar(ctx context.Context, carID string) (bool, error)
}
