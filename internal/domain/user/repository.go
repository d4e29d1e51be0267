package user

import (
	"context"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type Repository interface {
	GetUserByID(
		ctx context.Context,
		id string,
	) (*models.User, error)

	GetUserByEmail(
		ctx context.Context,
		email string,
	) (*models.User, error)

	CreateUser(
		ctx context.Context,
		u *models.User,
	) error

	ListPractitioners(
		ctx context.Context,
	) ([]models.User, error)
}
