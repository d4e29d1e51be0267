package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

var consentForm = []Field{
	{ID: "full_name", Label: "Full name", Type: FieldText, Required: true},
	{ID: "notes", Label: "Notes", Type: FieldTextarea},
	{ID: "age", Label: "Age", Type: FieldNumber, Required: true},
	{ID: "goal", Label: "Goal", Type: FieldSelect, Options: []string{"sleep", "stress"}},
	{ID: "consent", Label: "I consent", Type: FieldCheckbox, Required: true},
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	answers, err := DecodeAnswers([]byte(raw))
	require.NoError(t, err)
	return answers
}

func TestValidateAnswers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []httperr.FieldError
	}{
		{
			name: "complete",
			raw:  `{"full_name":"Ada","age":36,"goal":"sleep","consent":true}`,
		},
		{
			name: "unknown keys ignored",
			raw:  `{"full_name":"Ada","age":36,"consent":false,"favourite_colour":"green"}`,
		},
		{
			name: "missing consent",
			raw:  `{"full_name":"Ada","age":36}`,
			want: []httperr.FieldError{{Field: "consent", Reason: ReasonRequired}},
		},
		{
			name: "blank and null required",
			raw:  `{"full_name":"   ","age":null,"consent":true}`,
			want: []httperr.FieldError{
				{Field: "full_name", Reason: ReasonRequired},
				{Field: "age", Reason: ReasonRequired},
			},
		},
		{
			name: "wrong shapes",
			raw:  `{"full_name":42,"age":"36","consent":"yes","notes":[]}`,
			want: []httperr.FieldError{
				{Field: "full_name", Reason: ReasonExpectedString},
				{Field: "notes", Reason: ReasonExpectedString},
				{Field: "age", Reason: ReasonExpectedNumber},
				{Field: "consent", Reason: ReasonExpectedBoolean},
			},
		},
		{
			name: "select outside options",
			raw:  `{"full_name":"Ada","age":36,"goal":"fitness","consent":true}`,
			want: []httperr.FieldError{{Field: "goal", Reason: ReasonNotAnOption}},
		},
		{
			name: "optional blank is fine",
			raw:  `{"full_name":"Ada","age":36,"goal":"","notes":"","consent":true}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateAnswers(consentForm, decode(t, tc.raw))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeAnswers_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"text"`, `null`, `{`, ``} {
		_, err := DecodeAnswers([]byte(raw))
		assert.True(t, httperr.IsKind(err, httperr.KindInvalidInput), "input %q", raw)
	}
}

func TestCheckFields(t *testing.T) {
	require.NoError(t, CheckFields(consentForm))

	err := CheckFields(nil)
	assert.True(t, httperr.IsBusiness(err, "fields_required"))

	err = CheckFields([]Field{
		{ID: "", Label: "Name", Type: FieldText},
		{ID: "dob", Label: "Date of birth", Type: "date"},
	})
	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, httperr.KindInvalidInput, be.Kind)
	assert.Equal(t, []httperr.FieldError{
		{Field: "fields[0].id", Reason: "required"},
		{Field: "fields[1].type", Reason: "unknown_type"},
	}, be.Fields)
}

func TestEncodeParseFields_KeepsOrderAndOptions(t *testing.T) {
	blob, err := EncodeFields(consentForm)
	require.NoError(t, err)

	fields, err := ParseFields(blob)
	require.NoError(t, err)
	assert.Equal(t, consentForm, fields)

	_, err = ParseFields(`{"not":"a list"}`)
	assert.Error(t, err)
}

func TestCanSubmitIntake(t *testing.T) {
	ap := &models.Appointment{ClientID: "client-1", PractitionerID: "prac-1"}

	assert.True(t, CanSubmitIntake(user.Principal{ID: "client-1", Role: user.RoleClient}, ap))
	assert.True(t, CanSubmitIntake(user.Principal{ID: "admin", Role: user.RoleAdmin}, ap))
	assert.False(t, CanSubmitIntake(user.Principal{ID: "client-2", Role: user.RoleClient}, ap))
	assert.False(t, CanSubmitIntake(user.Principal{ID: "prac-1", Role: user.RolePractitioner}, ap))

	assert.False(t, CanManageTemplates(user.Principal{Role: user.RoleClient}))
	assert.True(t, CanManageTemplates(user.Principal{Role: user.RolePractitioner}))
}
