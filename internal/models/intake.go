package models

import "time"

// IntakeTemplate keeps its field schema as serialized JSON; decode it
// through the intake domain package before use.
type IntakeTemplate struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"size:150;not null" json:"name"`
	Description *string `gorm:"size:500" json:"description"`
	IsActive    bool    `gorm:"not null;index" json:"is_active"`
	FieldsJSON  string  `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type IntakeSubmission struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	AppointmentID string      `gorm:"type:uuid;not null;uniqueIndex:idx_intake_submission_appointment_client,priority:1" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ClientID string `gorm:"type:uuid;not null;uniqueIndex:idx_intake_submission_appointment_client,priority:2" json:"client_id"`

	TemplateID string         `gorm:"type:uuid;not null" json:"template_id"`
	Template   IntakeTemplate `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	AnswersJSON string    `gorm:"type:text;not null" json:"-"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
