package intake

import (
	"time"

	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// Template is a stored template with its schema decoded.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"created_at"`
}

func TemplateFromModel(m *models.IntakeTemplate) (*Template, error) {
	fields, err := ParseFields(m.FieldsJSON)
	if err != nil {
		return nil, err
	}
	return &Template{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		Fields:      fields,
		CreatedAt:   m.CreatedAt,
	}, nil
}
