package repository

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, notFoundOr(err, "user_not_found", "User not found", "get user by id")
	}
	return &u, nil
}

func (r *UserGormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&u).Error; err != nil {
		return nil, notFoundOr(err, "user_not_found", "User not found", "get user by email")
	}
	return &u, nil
}

func (r *UserGormRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return httperr.ErrBusiness(httperr.KindConflict, "email_taken", "Email already registered")
		}
		return errors.Wrap(err, "create user")
	}
	return nil
}

func (r *UserGormRepository) ListPractitioners(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(user.RolePractitioner)).
		Order("first_name ASC, last_name ASC").
		Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list practitioners")
	}
	return users, nil
}

var _ user.Repository = (*UserGormRepository)(nil)
