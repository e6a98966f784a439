package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carmarket/contexts/marketplace/listing-service/domain/entities"
	domainerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	"carmarket/contexts/marketplace/listing-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) CreateListing(ctx context.Context, listing ports.NewListing) (ports.AdvertisementView, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carRow := carModelFromEntity(listing.Car)
		if err := tx.Create(&carRow).Error; err != nil {
			return err
		}
		adRow := advertisementModelFromEntity(listing.Advertisement)
		if err := tx.Create(&adRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrCarAlreadyListed
			}
			return err
		}
		priceRow := priceHistoryModelFromEntity(listing.InitialPrice)
		return tx.Create(&priceRow).Error
	})
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	return r.GetAdvertisement(ctx, listing.Advertisement.AdvertisementID)
}

func (r *Repository) GetAdvertisement(ctx context.Context, advertisementID string) (ports.AdvertisementView, error) {
	var row advertisementViewRow
	err := r.viewQuery(ctx).
		Where("advertisements.advertisement_id = ?", advertisementID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AdvertisementView{}, domainerrors.ErrAdvertisementNotFound
		}
		return ports.AdvertisementView{}, err
	}
	return row.toView(), nil
}

func (r *Repository) GetAdvertisementByCar(ctx context.Context, carID string) (ports.AdvertisementView, error) {
	var row advertisementViewRow
	err := r.viewQuery(ctx).
		Where("advertisements.car_id = ?", carID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AdvertisementView{}, domainerrors.ErrAdvertisementNotFound
		}
		return ports.AdvertisementView{}, err
	}
	return row.toView(), nil
}

func (r *Repository) ListAdvertisements(ctx context.Context) ([]ports.AdvertisementView, error) {
	var rows []advertisementViewRow
	if err := r.viewQuery(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "advertisements", Name: "advertisement_id"}}).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.AdvertisementView, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toView())
	}
	return items, nil
}

func (r *Repository) SaveListing(ctx context.Context, view ports.AdvertisementView, priceRecord *entities.PriceRecord) (ports.AdvertisementView, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adRow := advertisementModelFromEntity(view.Advertisement)
		result := tx.Model(&advertisementModel{}).
			Where("advertisement_id = ?", adRow.AdvertisementID).
			Updates(map[string]any{
				"title":       adRow.Title,
				"description": adRow.Description,
				"price":       adRow.Price,
				"status":      adRow.Status,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrAdvertisementNotFound
		}

		carRow := carModelFromEntity(view.Car)
		if err := tx.Model(&carModel{}).
			Where("car_id = ?", carRow.CarID).
			Updates(map[string]any{
				"make":   carRow.Make,
				"model":  carRow.Model,
				"year":   carRow.Year,
				"color":  carRow.Color,
				"status": carRow.Status,
			}).Error; err != nil {
			return err
		}

		if priceRecord != nil {
			priceRow := priceHistoryModelFromEntity(*priceRecord)
			if err := tx.Create(&priceRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ports.AdvertisementView{}, err
	}
	return r.GetAdvertisement(ctx, view.Advertisement.AdvertisementID)
}

// DeleteListing removes the advertisement, its car, and the car's history
// children in one transaction. The transactions table carries a RESTRICT
// foreign key on car_id, so a referenced car surfaces as a conflict even
// if the service-level guard raced.
func (r *Repository) DeleteListing(ctx context.Context, advertisementID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var adRow advertisementModel
		if err := tx.Where("advertisement_id = ?", advertisementID).First(&adRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrAdvertisementNotFound
			}
			return err
		}

		for _, child := range []any{&priceHistoryModel{}, &ownershipHistoryModel{}, &carImageModel{}} {
			if err := tx.Where("car_id = ?", adRow.CarID).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("advertisement_id = ?", advertisementID).Delete(&advertisementModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("car_id = ?", adRow.CarID).Delete(&carModel{}).Error; err != nil {
			if isForeignKeyViolation(err) {
				return domainerrors.ErrCarHasTransaction
			}
			return err
		}
		return nil
	})
	return err
}

func (r *Repository) GetCar(ctx context.Context, carID string) (entities.Car, error) {
	var row carModel
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Car{}, domainerrors.ErrCarNotFound
		}
		return entities.Car{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCars(ctx context.Context) ([]entities.Car, error) {
	var rows []carModel
	if err := r.db.WithContext(ctx).
		Order("car_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return carEntities(rows), nil
}

func (r *Repository) SearchCars(ctx context.Context, filter ports.SearchFilter) ([]entities.Car, error) {
	tx := r.db.WithContext(ctx).
		Model(&carModel{}).
		Select("cars.*").
		Joins("JOIN advertisements ON advertisements.car_id = cars.car_id")

	if filter.MinPrice != nil {
		tx = tx.Where("advertisements.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		tx = tx.Where("advertisements.price <= ?", *filter.MaxPrice)
	}
	if filter.Brand != "" {
		tx = tx.Where("cars.make ILIKE ?", "%"+filter.Brand+"%")
	}
	if filter.Color != "" {
		tx = tx.Where("cars.color ILIKE ?", "%"+filter.Color+"%")
	}
	if filter.Status != "" {
		tx = tx.Where("cars.status = ?", filter.Status)
	}

	var rows []carModel
	if err := tx.Order("cars.car_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return carEntities(rows), nil
}

func (r *Repository) RelatedCars(ctx context.Context, carID string, limit int) ([]entities.Car, error) {
	main, err := r.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	var rows []carModel
	if err := r.db.WithContext(ctx).
		Where("make = ? AND car_id <> ?", main.Make, carID).
		Order("car_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return carEntities(rows), nil
}

func (r *Repository) AddCarImage(ctx context.Context, image entities.CarImage) (entities.CarImage, error) {
	row := carImageModel{
		ImageID:     image.ImageID,
		CarID:       image.CarID,
		ImageURL:    image.ImageURL,
		Description: image.Description,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return entities.CarImage{}, domainerrors.ErrCarNotFound
		}
		return entities.CarImage{}, err
	}
	return image, nil
}

func (r *Repository) ListCarImages(ctx context.Context, carID string) ([]entities.CarImage, error) {
	var rows []carImageModel
	if err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("image_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.CarImage, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.CarImage{
			ImageID:     row.ImageID,
			CarID:       row.CarID,
			ImageURL:    row.ImageURL,
			Description: row.Description,
		})
	}
	return items, nil
}

func (r *Repository) ListPriceHistory(ctx context.Context, carID string) ([]entities.PriceRecord, error) {
	var rows []priceHistoryModel
	if err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("change_date ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.PriceRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.PriceRecord{
			RecordID:  row.RecordID,
			CarID:     row.CarID,
			Price:     row.Price,
			ChangedAt: row.ChangeDate.UTC(),
		})
	}
	return items, nil
}

// viewQuery joins advertisements to cars and, read-only, to the users
// table for the publisher's mobile number.
func (r *Repository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&advertisementModel{}).
		Select("advertisements.*, " +
			"cars.make AS car_make, cars.model AS car_model, cars.year AS car_year, " +
			"cars.color AS car_color, cars.status AS car_status, " +
			"users.mobile_number AS publisher_mobile").
		Joins("JOIN cars ON cars.car_id = advertisements.car_id").
		Joins("LEFT JOIN users ON users.user_id = advertisements.user_id")
}

type carModel struct {
	CarID  string `gorm:"column:car_id;primaryKey"`
	Make   string `gorm:"column:make;index"`
	Model  string `gorm:"column:model"`
	Year   int    `gorm:"column:year"`
	Color  string `gorm:"column:color;index"`
	Status string `gorm:"column:status;index"`
}

func (carModel) TableName() string {
	return "cars"
}

func carModelFromEntity(car entities.Car) carModel {
	return carModel{
		CarID:  car.CarID,
		Make:   car.Make,
		Model:  car.Model,
		Year:   car.Year,
		Color:  car.Color,
		Status: car.Status,
	}
}

func (m carModel) toEntity() entities.Car {
	return entities.Car{
		CarID:  m.CarID,
		Make:   m.Make,
		Model:  m.Model,
		Year:   m.Year,
		Color:  m.Color,
		Status: m.Status,
	}
}

func carEntities(rows []carModel) []entities.Car {
	items := make([]entities.Car, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type advertisementModel struct {
	AdvertisementID string          `gorm:"column:advertisement_id;primaryKey"`
	Title           string          `gorm:"column:title"`
	Description     string          `gorm:"column:description"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(15,2);index"`
	Status          string          `gorm:"column:status"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	CarID           string          `gorm:"column:car_id;uniqueIndex"`
	UserID          *string         `gorm:"column:user_id"`
}

func (advertisementModel) TableName() string {
	return "advertisements"
}

func advertisementModelFromEntity(ad entities.Advertisement) advertisementModel {
	row := advertisementModel{
		AdvertisementID: ad.AdvertisementID,
		Title:           ad.Title,
		Description:     ad.Description,
		Price:           ad.Price,
		Status:          ad.Status,
		CreatedAt:       ad.CreatedAt.UTC(),
		CarID:           ad.CarID,
	}
	if ad.PublisherID != "" {
		publisher := ad.PublisherID
		row.UserID = &publisher
	}
	return row
}

type advertisementViewRow struct {
	advertisementModel
	CarMake         string  `gorm:"column:car_make"`
	CarModel        string  `gorm:"column:car_model"`
	CarYear         int     `gorm:"column:car_year"`
	CarColor        string  `gorm:"column:car_color"`
	CarStatus       string  `gorm:"column:car_status"`
	PublisherMobile *string `gorm:"column:publisher_mobile"`
}

func (m advertisementViewRow) toView() ports.AdvertisementView {
	publisherID := ""
	if m.UserID != nil {
		publisherID = *m.UserID
	}
	publisherMobile := ""
	if m.PublisherMobile != nil {
		publisherMobile = *m.PublisherMobile
	}
	return ports.AdvertisementView{
		Advertisement: entities.Advertisement{
			AdvertisementID: m.AdvertisementID,
			Title:           m.Title,
			Description:     m.Description,
			Price:           m.Price,
			Status:          m.Status,
			CreatedAt:       m.CreatedAt.UTC(),
			CarID:           m.CarID,
			PublisherID:     publisherID,
		},
		Car: entities.Car{
			CarID:  m.CarID,
			Make:   m.CarMake,
			Model:  m.CarModel,
			Year:   m.CarYear,
			Color:  m.CarColor,
			Status: m.CarStatus,
		},
		PublisherMobile: publisherMobile,
	}
}

type priceHistoryModel struct {
	RecordID   string          `gorm:"column:record_id;primaryKey"`
	CarID      string          `gorm:"column:car_id;index"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(15,2)"`
	ChangeDate time.Time       `gorm:"column:change_date"`
}

func (priceHistoryModel) TableName() string {
	return "price_history"
}

func priceHistoryModelFromEntity(record entities.PriceRecord) priceHistoryModel {
	return priceHistoryModel{
		RecordID:   record.RecordID,
		CarID:      record.CarID,
		Price:      record.Price,
		ChangeDate: record.ChangedAt.UTC(),
	}
}

type ownershipHistoryModel struct {
	RecordID  string     `gorm:"column:record_id;primaryKey"`
	CarID     string     `gorm:"column:car_id;index"`
	OwnerID   *string    `gorm:"column:owner_id"`
	StartDate time.Time  `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
}

func (ownershipHistoryModel) TableName() string {
	return "ownership_history"
}

type carImageModel struct {
	ImageID     string `gorm:"column:image_id;primaryKey"`
	CarID       string `gorm:"column:car_id;index"`
	ImageURL    string `gorm:"column:image_url"`
	Description string `gorm:"column:description"`
}

func (carImageModel) TableName() string {
	return "car_images"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ ports.Repository = (*Repository)(nil)
