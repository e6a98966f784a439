package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carmarket/contexts/marketplace/trade-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/trade-service/domain/errors"
	"carmarket/contexts/marketplace/trade-service/ports"

	"github.com/shopspring/decimal"
)

type Service struct {
	Repo     ports.Repository
	Listings ports.ListingDirectory
	Users    ports.UserDirectory
	Clock    ports.Clock
	IDs      ports.IDGenerator
	Logger   *slog.Logger
}

// CreateTransaction opens a pending transaction on a car. The seller is
// resolved from the car's advertisement, never taken from the request.
// A car carries at most one transaction over its lifetime, so the
// pending check and the insert run as one atomic repository step.
func (s Service) CreateTransaction(ctx context.Context, actor ports.Actor, carID string, agreedPrice decimal.Decimal) (ports.TransactionView, error) {
	carID = strings.TrimSpace(carID)
	if carID == "" || agreedPrice.LessThanOrEqual(decimal.Zero) {
		return ports.TransactionView{}, domainerrors.ErrInvalidRequest
	}

	exists, err := s.Listings.CarExists(ctx, carID)
	if err != nil {
		return ports.TransactionView{}, err
	}
	if !exists {
		return ports.TransactionView{}, domainerrors.ErrCarNotFound
	}
	sellerID, carMake, found, err := s.Listings.AdvertisementByCar(ctx, carID)
	if err != nil {
		return ports.TransactionView{}, err
	}
	if !found {
		return ports.TransactionView{}, domainerrors.ErrAdvertisementNotFound
	}
	if sellerID == actor.UserID {
		return ports.TransactionView{}, domainerrors.ErrSelfTrade
	}

	transactionID, err := s.IDs.NewID(ctx)
	if err != nil {
		return ports.TransactionView{}, err
	}
	now := s.now()
	txn, err := s.Repo.Create(ctx, entities.Transaction{
		TransactionID: transactionID,
		CarID:         carID,
		BuyerID:       actor.UserID,
		SellerID:      sellerID,
		Status:        entities.StatusPending,
		AgreedPrice:   agreedPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return ports.TransactionView{}, err
	}

	resolveLogger(s.Logger).Info("transaction created",
		"event", "transaction_created",
		"module", "marketplace/trade-service",
		"layer", "application",
		"transaction_id", txn.TransactionID,
		"car_id", txn.CarID,
		"buyer_id", txn.BuyerID,
		"seller_id", txn.SellerID,
	)
	return s.view(ctx, txn, carMake)
}

// UpdateStatus settles a transaction. Only the seller or a privileged
// actor may move it, closed transactions reject any further change, and
// the move must be a legal transition.
func (s Service) UpdateStatus(ctx context.Context, actor ports.Actor, transactionID string, status string) (ports.TransactionView, error) {
	status = strings.TrimSpace(status)
	if !entities.IsValidStatus(status) {
		return ports.TransactionView{}, domainerrors.ErrInvalidStatus
	}

	txn, err := s.Repo.Get(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return ports.TransactionView{}, err
	}
	if !actor.Privileged && txn.SellerID != actor.UserID {
		return ports.TransactionView{}, domainerrors.ErrForbidden
	}
	if txn.IsClosed() {
		return ports.TransactionView{}, domainerrors.ErrTransactionClosed
	}
	if !txn.CanTransition(status) {
		return ports.TransactionView{}, domainerrors.ErrInvalidTransition
	}

	previous := txn.Status
	txn.Status = status
	txn.UpdatedAt = s.now()
	txn, err = s.Repo.Save(ctx, txn)
	if err != nil {
		return ports.TransactionView{}, err
	}

	resolveLogger(s.Logger).Info("transaction status changed",
		"event", "transaction_status_changed",
		"module", "marketplace/trade-service",
		"layer", "application",
		"transaction_id", txn.TransactionID,
		"from", previous,
		"to", txn.Status,
	)
	return s.enrich(ctx, txn)
}

// ListTransactions scopes visibility to the actor: privileged actors
// see every transaction, everyone else sees only the ones they are a
// party to.
func (s Service) ListTransactions(ctx context.Context, actor ports.Actor) ([]ports.TransactionView, error) {
	var (
		txns []entities.Transaction
		err  error
	)
	if actor.Privileged {
		txns, err = s.Repo.ListAll(ctx)
	} else {
		txns, err = s.Repo.ListForUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]ports.TransactionView, 0, len(txns))
	for _, txn := range txns {
		view, err := s.enrich(ctx, txn)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s Service) GetTransaction(ctx context.Context, actor ports.Actor, transactionID string) (ports.TransactionView, error) {
	txn, err := s.Repo.Get(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return ports.TransactionView{}, err
	}
	if !actor.Privileged && txn.BuyerID != actor.UserID && txn.SellerID != actor.UserID {
		return ports.TransactionView{}, domainerrors.ErrForbidden
	}
	return s.enrich(ctx, txn)
}

// HasTransactionForCar is the guard the listing context consults before
// deleting a car: any transaction row, open or closed, pins the car as
// an audit trail.
func (s Service) HasTransactionForCar(ctx context.Context, carID string) (bool, error) {
	return s.Repo.HasTransactionForCar(ctx, strings.TrimSpace(carID))
}

func (s Service) enrich(ctx context.Context, txn entities.Transaction) (ports.TransactionView, error) {
	carMake := ""
	if s.Listings != nil {
		_, resolved, found, err := s.Listings.AdvertisementByCar(ctx, txn.CarID)
		if err != nil {
			return ports.TransactionView{}, err
		}
		if found {
			carMake = resolved
		}
	}
	return s.view(ctx, txn, carMake)
}

func (s Service) view(ctx context.Context, txn entities.Transaction, carMake string) (ports.TransactionView, error) {
	view := ports.TransactionView{Transaction: txn, CarMake: carMake}
	if s.Users == nil {
		return view, nil
	}
	buyerMobile, err := s.Users.MobileNumberOf(ctx, txn.BuyerID)
	if err != nil {
		return ports.TransactionView{}, err
	}
	sellerMobile, err := s.Users.MobileNumberOf(ctx, txn.SellerID)
	if err != nil {
		return ports.TransactionView{}, err
	}
	view.BuyerMobile = buyerMobile
	view.SellerMobile = sellerMobile
	return view, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
