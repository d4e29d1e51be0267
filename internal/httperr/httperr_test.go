package httperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond_MapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", ErrInvalidInput("invalid_date", "bad"), http.StatusBadRequest, "invalid_date"},
		{"not found", ErrNotFound("appointment_not_found", "nope"), http.StatusNotFound, "appointment_not_found"},
		{"forbidden", ErrForbidden("forbidden", "no"), http.StatusForbidden, "forbidden"},
		{"slot conflict", ErrSlotConflict(), http.StatusConflict, "slot_conflict"},
		{"transition", ErrInvalidTransition("CANCELLED", "CONFIRMED"), http.StatusConflict, "invalid_transition"},
		{"unauthorized", ErrBusiness(KindUnauthorized, "invalid_credentials", "no"), http.StatusUnauthorized, "invalid_credentials"},
		{"email taken", ErrBusiness(KindConflict, "email_taken", "dup"), http.StatusConflict, "email_taken"},
		{"wrapped", errors.Wrap(ErrSlotConflict(), "create appointment"), http.StatusConflict, "slot_conflict"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Respond(c, tc.err)

			assert.Equal(t, tc.status, w.Code)

			var body HTTPError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestRespond_ValidationFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, ErrValidation("intake_validation_failed", []FieldError{{Field: "consent", Reason: "required"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "consent", body.Fields[0].Field)
}

func TestRespond_InternalErrorAttachedToContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, errors.New("boom"))

	require.Len(t, c.Errors, 1)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestAsBusiness_ThroughWrapChain(t *testing.T) {
	err := errors.Wrapf(errors.WithStack(ErrNotFound("template_not_found", "gone")), "load template %s", "t-1")

	be, ok := AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, be.Kind)
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, IsBusiness(err, "template_not_found"))

	_, ok = AsBusiness(errors.Newf("plain %d", 1))
	assert.False(t, ok)
}
