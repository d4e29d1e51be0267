package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldSelect, FieldCheckbox:
		return true
	}
	return false
}

// Field is one entry of a template schema. Type is the discriminator;
// Options only carries meaning for select fields.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
}

// CheckFields validates a schema before it is stored.
func CheckFields(fields []Field) error {
	if len(fields) == 0 {
		return httperr.ErrInvalidInput("fields_required", "a template needs at least one field")
	}

	var problems []httperr.FieldError
	for i, f := range fields {
		name := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(f.ID) == "" {
			problems = append(problems, httperr.FieldError{Field: name + ".id", Reason: "required"})
		}
		if strings.TrimSpace(f.Label) == "" {
			problems = append(problems, httperr.FieldError{Field: name + ".label", Reason: "required"})
		}
		if !f.Type.Valid() {
			problems = append(problems, httperr.FieldError{Field: name + ".type", Reason: "unknown_type"})
		}
	}

	if len(problems) > 0 {
		return httperr.BusinessError{
			Kind:    httperr.KindInvalidInput,
			Code:    "invalid_template_fields",
			Message: "template fields are invalid",
			Fields:  problems,
		}
	}
	return nil
}

func EncodeFields(fields []Field) (string, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseFields decodes a stored schema and rejects blobs that no longer
// satisfy CheckFields.
func ParseFields(blob string) ([]Field, error) {
	var fields []Field
	if err := json.Unmarshal([]byte(blob), &fields); err != nil {
		return nil, errors.Wrap(err, "decode template fields")
	}
	if err := CheckFields(fields); err != nil {
		return nil, errors.Wrap(err, "stored template fields")
	}
	return fields, nil
}
