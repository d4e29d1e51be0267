package appointment

import (
	"strings"

	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, nil
	}
	return "", httperr.ErrInvalidInput("invalid_status", "unknown appointment status "+s)
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Blocks reports whether an appointment in this status occupies its window.
func (s Status) Blocks() bool {
	return s != StatusCancelled
}

// ===============================
// Validations
// ===============================

// ValidateTransition rejects every move outside the lifecycle graph,
// including staying in the same status.
func ValidateTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return httperr.ErrInvalidTransition(string(from), string(to))
}

func InitialStatus() Status {
	return StatusPending
}
