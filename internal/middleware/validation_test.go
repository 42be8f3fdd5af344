package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ecomdash/internal/errors"
)

type rangeQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Top   int    `query:"top" validate:"omitempty,min=1,max=50"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		query      rangeQuery
		wantFields []string
	}{
		{name: "empty query", query: rangeQuery{}},
		{name: "valid", query: rangeQuery{Start: "2018-01-01", End: "2018-01-31", Top: 5}},
		{name: "bad start", query: rangeQuery{Start: "01/01/2018"}, wantFields: []string{"start"}},
		{name: "bad both", query: rangeQuery{Start: "x", End: "2018-13-01"}, wantFields: []string{"start", "end"}},
		{name: "top too large", query: rangeQuery{Top: 51}, wantFields: []string{"top"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	qv := NewQueryParamValidator(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))
	views := []string{"daily", "categories", "reviews"}

	t.Run("int default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		n, ok := qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "top", 1, 50, 5)
		assert.True(t, ok)
		assert.Equal(t, 5, n)
	})

	t.Run("int out of range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?top=0", nil), "top", 1, 50, 5)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enum accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		view, ok := qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?view=reviews", nil), "view", views, "daily")
		assert.True(t, ok)
		assert.Equal(t, "reviews", view)
	})

	t.Run("enum rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?view=weekly", nil), "view", views, "daily")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "view must be one of: daily, categories, reviews")
	})
}
