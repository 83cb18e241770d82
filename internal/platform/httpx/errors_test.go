package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("product 9: %w", ErrNotFound):   http.StatusNotFound,
		fmt.Errorf("email: %w", ErrDuplicate):      http.StatusConflict,
		fmt.Errorf("key reused: %w", ErrConflict):  http.StatusConflict,
		fmt.Errorf("bad price: %w", ErrValidation): http.StatusBadRequest,
		ErrForbidden:                   http.StatusForbidden,
		ErrUnauthorized:                http.StatusUnauthorized,
		fmt.Errorf("connection reset"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Empty(t, body.Detail)
}

func TestRespondErrorValidationFields(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(input{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("create: %w", err))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ProblemDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "required", body.Fields["Name"])
}
