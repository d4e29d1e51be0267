package dto

import (
	"time"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type PractitionerDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

type SessionDTO struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

func UserFromModel(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func PractitionersFromModels(users []models.User) []PractitionerDTO {
	out := make([]PractitionerDTO, 0, len(users))
	for _, u := range users {
		out = append(out, PractitionerDTO{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Name:      u.FullName(),
		})
	}
	return out
}
