package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"carmarket/contexts/marketplace/trade-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/trade-service/domain/errors"
	"carmarket/contexts/marketplace/trade-service/ports"
)

// Store keeps transactions behind one mutex so the pending-per-car
// check and the insert happen as a single step. It also doubles as a
// fixture-backed listing and user directory for standalone use.
type Store struct {
	mu sync.RWMutex

	transactionsByID map[string]entities.Transaction
	listings         map[string]listingFixture
	mobilesByUserID  map[string]string
	sequence         uint64
}

type listingFixture struct {
	publisherID string
	carMake     string
}

func NewStore() *Store {
	return &Store{
		transactionsByID: make(map[string]entities.Transaction),
		listings:         make(map[string]listingFixture),
		mobilesByUserID:  make(map[string]string),
		sequence:         1,
	}
}

// RegisterListing teaches the store a car with its advertisement's
// publisher and make, so the directory reads resolve without the
// listing context.
func (s *Store) RegisterListing(carID string, publisherID string, carMake string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[carID] = listingFixture{publisherID: publisherID, carMake: carMake}
}

// RegisterUserMobile teaches the store a user's contact number for
// transaction views.
func (s *Store) RegisterUserMobile(userID string, mobileNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mobilesByUserID[userID] = mobileNumber
}

func (s *Store) Create(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.transactionsByID {
		if existing.CarID != txn.CarID {
			continue
		}
		if existing.Status == entities.StatusPending {
			return entities.Transaction{}, domainerrors.ErrPendingTransactionExists
		}
		return entities.Transaction{}, domainerrors.ErrCarAlreadyTraded
	}
	s.transactionsByID[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) Get(ctx context.Context, transactionID string) (entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactionsByID[transactionID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *Store) Save(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactionsByID[txn.TransactionID]; !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	s.transactionsByID[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) ListAll(ctx context.Context) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Transaction, 0, len(s.transactionsByID))
	for _, txn := range s.transactionsByID {
		items = append(items, txn)
	}
	return sortedLocked(items), nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Transaction, 0)
	for _, txn := range s.transactionsByID {
		if txn.BuyerID == userID || txn.SellerID == userID {
			items = append(items, txn)
		}
	}
	return sortedLocked(items), nil
}

func (s *Store) HasTransactionForCar(ctx context.Context, carID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, txn := range s.transactionsByID {
		if txn.CarID == carID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CarExists(ctx context.Context, carID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.listings[carID]
	return ok, nil
}

func (s *Store) AdvertisementByCar(ctx context.Context, carID string) (string, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fixture, ok := s.listings[carID]
	if !ok {
		return "", "", false, nil
	}
	return fixture.publisherID, fixture.carMake, true, nil
}

func (s *Store) MobileNumberOf(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mobilesByUserID[userID], nil
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("trd_%d", n), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func sortedLocked(items []entities.Transaction) []entities.Transaction {
	sort.Slice(items, func(i int, j int) bool {
		return items[i].TransactionID < items[j].TransactionID
	})
	return items
}

var _ ports.Repository = (*Store)(nil)
var _ ports.ListingDirectory = (*Store)(nil)
var _ ports.UserDirectory = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
