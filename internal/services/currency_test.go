package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueFormatter(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		locale   string
		amount   float64
		want     string
	}{
		{"english grouping", "USD", "en-US", 1234567.5, "1,234,567.50"},
		{"german grouping", "AUD", "de-DE", 1234567.5, "1.234.567,50"},
		{"zero", "AUD", "de-DE", 0, "0,00"},
		{"zero decimal currency", "JPY", "en-US", 1234567, "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewRevenueFormatter(tt.currency, tt.locale)
			require.NoError(t, err)

			got := f.Format(tt.amount)
			assert.Contains(t, got, tt.want)
			assert.Equal(t, tt.currency, f.Currency())
			assert.Equal(t, tt.locale, f.Locale())
		})
	}
}

func TestRevenueFormatter_DefaultLocale(t *testing.T) {
	f, err := NewRevenueFormatter("AUD", "es-CO")
	require.NoError(t, err)

	got := f.Format(1234567.5)
	assert.Contains(t, got, "234")
	assert.Contains(t, got, "567")
	assert.NotContains(t, got, "1234567")
}

func TestRevenueFormatter_Invalid(t *testing.T) {
	_, err := NewRevenueFormatter("XX", "en-US")
	assert.Error(t, err)

	_, err = NewRevenueFormatter("USD", "not a locale!")
	assert.Error(t, err)
}
