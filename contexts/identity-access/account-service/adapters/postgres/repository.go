package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"carmarket/contexts/identity-access/account-service/domain/entities"
	domainerrors "carmarket/contexts/identity-access/account-service/domain/errors"
	"carmarket/contexts/identity-access/account-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.User{}, domainerrors.ErrMobileAlreadyTaken
		}
		return entities.User{}, err
	}
	return row.toEntity(nil), nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	roles, err := r.RolesOf(ctx, userID)
	if err != nil {
		return entities.User{}, err
	}
	return row.toEntity(roles), nil
}

func (r *Repository) GetUserByMobile(ctx context.Context, mobileNumber string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("mobile_number = ?", mobileNumber).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	roles, err := r.RolesOf(ctx, row.UserID)
	if err != nil {
		return entities.User{}, err
	}
	return row.toEntity(roles), nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Order("user_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		roles, err := r.RolesOf(ctx, row.UserID)
		if err != nil {
			return nil, err
		}
		items = append(items, row.toEntity(roles))
	}
	return items, nil
}

func (r *Repository) SetActive(ctx context.Context, userID string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) GrantRole(ctx context.Context, userID string, roleName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role roleModel
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRoleNotFound
			}
			return err
		}
		row := userRoleModel{UserID: userID, RoleID: role.RoleID}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRoleAlreadyGranted
			}
			if isForeignKeyViolation(err) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}
		return nil
	})
}

func (r *Repository) RolesOf(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&userRoleModel{}).
		Select("roles.name").
		Joins("JOIN roles ON roles.role_id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Scan(&names).
		Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Repository) EnsureRole(ctx context.Context, roleName string) error {
	row := roleModel{RoleID: roleName, Name: roleName}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && !isUniqueViolation(err) {
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, token string) (string, bool, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.UserID, true, nil
}

func (r *Repository) Put(ctx context.Context, token string, userID string, createdAt time.Time) error {
	row := sessionModel{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&sessionModel{}).
		Error
}

func (r *Repository) DeleteForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&sessionModel{}).
		Error
}

type userModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	MobileNumber string    `gorm:"column:mobile_number;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	return userModel{
		UserID:       user.UserID,
		MobileNumber: user.MobileNumber,
		PasswordHash: user.PasswordHash,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt.UTC(),
	}
}

func (m userModel) toEntity(roles []string) entities.User {
	return entities.User{
		UserID:       m.UserID,
		MobileNumber: m.MobileNumber,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		Roles:        roles,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type roleModel struct {
	RoleID string `gorm:"column:role_id;primaryKey"`
	Name   string `gorm:"column:name;uniqueIndex"`
}

func (roleModel) TableName() string {
	return "roles"
}

type userRoleModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	RoleID string `gorm:"column:role_id;primaryKey"`
}

func (userRoleModel) TableName() string {
	return "user_roles"
}

type sessionModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string {
	return "sessions"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ ports.UserRepository = (*Repository)(nil)
var _ ports.SessionStore = (*Repository)(nil)
