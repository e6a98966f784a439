package ports

import (
	"context"
	"time"

	"carmarket/contexts/marketplace/trade-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Actor identifies the authenticated user driving an operation.
// Privileged actors see every transaction and may settle on behalf of
// any seller.
type Actor struct {
	UserID     string
	Privileged bool
}

// TransactionView is a transaction enriched with the directory fields
// the transport layer renders alongside it.
type TransactionView struct {
	Transaction  entities.Transaction
	CarMake      string
	BuyerMobile  string
	SellerMobile string
}

// Repository persists transactions. Create must reject a car that
// already has a pending transaction, atomically with the insert.
type Repository interface {
	Create(ctx context.Context, txn entities.Transaction) (entities.Transaction, error)
	Get(ctx context.Context, transactionID string) (entities.Transaction, error)
	Save(ctx context.Context, txn entities.Transaction) (entities.Transaction, error)
	ListAll(ctx context.Context) ([]entities.Transaction, error)
	ListForUser(ctx context.Context, userID string) ([]entities.Transaction, error)
	HasTransactionForCar(ctx context.Context, carID string) (bool, error)
}

// ListingDirectory is the read surface the listing context exposes to
// trades. Signatures stay primitive so neither context imports the
// other's types.
type ListingDirectory interface {
	CarExists(ctx context.Context, carID string) (bool, error)
	AdvertisementByCar(ctx context.Context, carID string) (publisherID string, carMake string, found bool, err error)
}

// UserDirectory resolves the contact number shown on transaction views.
type UserDirectory interface {
	MobileNumberOf(ctx context.Context, userID string) (string, error)
}
