package intake

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
)

const (
	ReasonRequired        = "required"
	ReasonExpectedString  = "expected_string"
	ReasonExpectedNumber  = "expected_number"
	ReasonExpectedBoolean = "expected_boolean"
	ReasonNotAnOption     = "not_an_option"
)

// DecodeAnswers parses a raw answers payload. It must be a JSON object;
// numbers stay as json.Number so their shape can be checked.
func DecodeAnswers(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var answers map[string]any
	if err := dec.Decode(&answers); err != nil || answers == nil {
		return nil, httperr.ErrInvalidInput("invalid_answers", "answers must be a JSON object")
	}
	return answers, nil
}

// ValidateAnswers checks answers against fields in template order. Keys
// without a matching field are ignored.
func ValidateAnswers(fields []Field, answers map[string]any) []httperr.FieldError {
	var problems []httperr.FieldError

	for _, f := range fields {
		v, present := answers[f.ID]
		if !present || v == nil {
			if f.Required {
				problems = append(problems, httperr.FieldError{Field: f.ID, Reason: ReasonRequired})
			}
			continue
		}

		if reason := checkValue(f, v); reason != "" {
			problems = append(problems, httperr.FieldError{Field: f.ID, Reason: reason})
		}
	}

	return problems
}

func checkValue(f Field, v any) string {
	switch f.Type {
	case FieldText, FieldTextarea, FieldSelect:
		s, ok := v.(string)
		if !ok {
			return ReasonExpectedString
		}
		if strings.TrimSpace(s) == "" {
			if f.Required {
				return ReasonRequired
			}
			return ""
		}
		if f.Type == FieldSelect && len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			return ReasonNotAnOption
		}
	case FieldNumber:
		n, ok := v.(json.Number)
		if !ok {
			return ReasonExpectedNumber
		}
		if _, err := n.Float64(); err != nil {
			return ReasonExpectedNumber
		}
	case FieldCheckbox:
		if _, ok := v.(bool); !ok {
			return ReasonExpectedBoolean
		}
	}
	return ""
}
