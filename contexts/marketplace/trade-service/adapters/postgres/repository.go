package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carmarket/contexts/marketplace/trade-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/trade-service/domain/errors"
	"carmarket/contexts/marketplace/trade-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the transaction after checking, inside the same
// database transaction, whether the car already carries one. The unique
// index on car_id backstops the check when two creators race.
func (r *Repository) Create(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing transactionModel
		err := tx.Where("car_id = ?", txn.CarID).First(&existing).Error
		switch {
		case err == nil:
			if existing.Status == entities.StatusPending {
				return domainerrors.ErrPendingTransactionExists
			}
			return domainerrors.ErrCarAlreadyTraded
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		row := transactionModelFromEntity(txn)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrPendingTransactionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return txn, nil
}

func (r *Repository) Get(ctx context.Context, transactionID string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) Save(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	result := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("transaction_id = ?", txn.TransactionID).
		Updates(map[string]any{
			"status":     txn.Status,
			"updated_at": txn.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.Transaction{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return txn, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]entities.Transaction, error) {
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Order("transaction_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return transactionEntities(rows), nil
}

func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.Transaction, error) {
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("transaction_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return transactionEntities(rows), nil
}

func (r *Repository) HasTransactionForCar(ctx context.Context, carID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("car_id = ?", carID).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type transactionModel struct {
	TransactionID string          `gorm:"column:transaction_id;primaryKey"`
	CarID         string          `gorm:"column:car_id;uniqueIndex"`
	BuyerID       string          `gorm:"column:buyer_id;index"`
	SellerID      string          `gorm:"column:seller_id;index"`
	Status        string          `gorm:"column:status;index"`
	AgreedPrice   decimal.Decimal `gorm:"column:agreed_price;type:numeric(15,2)"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func transactionModelFromEntity(txn entities.Transaction) transactionModel {
	return transactionModel{
		TransactionID: txn.TransactionID,
		CarID:         txn.CarID,
		BuyerID:       txn.BuyerID,
		SellerID:      txn.SellerID,
		Status:        txn.Status,
		AgreedPrice:   txn.AgreedPrice,
		CreatedAt:     txn.CreatedAt.UTC(),
		UpdatedAt:     txn.UpdatedAt.UTC(),
	}
}

func (m transactionModel) toEntity() entities.Transaction {
	return entities.Transaction{
		TransactionID: m.TransactionID,
		CarID:         m.CarID,
		BuyerID:       m.BuyerID,
		SellerID:      m.SellerID,
		Status:        m.Status,
		AgreedPrice:   m.AgreedPrice,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func transactionEntities(rows []transactionModel) []entities.Transaction {
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
