package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
)

var testNow = time.Date(2026, time.September, 1, 14, 30, 0, 0, time.UTC)

func TestValidateExpiryDate(t *testing.T) {
	tests := []struct {
		name    string
		expiry  string
		wantErr string
	}{
		{name: "tomorrow is valid", expiry: "2026-09-02"},
		{name: "far future is valid", expiry: "2031-01-15"},
		{name: "today is not in the future", expiry: "2026-09-01", wantErr: "Expiry must be in the future"},
		{name: "past date", expiry: "2020-05-20", wantErr: "Expiry must be in the future"},
		{name: "wrong format", expiry: "01-09-2030", wantErr: "Invalid date format (YYYY-MM-DD)"},
		{name: "not a date", expiry: "soon", wantErr: "Invalid date format (YYYY-MM-DD)"},
		{name: "empty value", expiry: "", wantErr: "Invalid date format (YYYY-MM-DD)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validateAt(domain.FieldMap{domain.FieldExpiryDate: tt.expiry}, testNow)

			if tt.wantErr == "" {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
			} else {
				assert.False(t, res.Valid)
				assert.Equal(t, tt.wantErr, res.Errors[domain.FieldExpiryDate])
			}
		})
	}
}

func TestValidatePassportNumber(t *testing.T) {
	tests := []struct {
		name     string
		passport string
		valid    bool
	}{
		{name: "canonical", passport: "PA234567", valid: true},
		{name: "lowercase input accepted", passport: "pa234567", valid: true},
		{name: "missing P prefix", passport: "A2345678", valid: false},
		{name: "too short", passport: "PA23456", valid: false},
		{name: "too long", passport: "PA2345678", valid: false},
		{name: "illegal characters", passport: "PA23-567", valid: false},
		{name: "empty value", passport: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validateAt(domain.FieldMap{domain.FieldPassportNumber: tt.passport}, testNow)

			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.Equal(t, "Invalid passport format (P[A-Z0-9]{7})", res.Errors[domain.FieldPassportNumber])
			}
		})
	}
}

func TestValidateAbsentFieldsProduceNoErrors(t *testing.T) {
	res := validateAt(domain.FieldMap{domain.FieldName: "John Doe"}, testNow)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateEmptyMap(t *testing.T) {
	res := validateAt(domain.FieldMap{}, testNow)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateCollectsIndependentErrors(t *testing.T) {
	data := domain.FieldMap{
		domain.FieldExpiryDate:     "2020-01-01",
		domain.FieldPassportNumber: "bogus",
		domain.FieldName:           "John Doe",
	}

	res := validateAt(data, testNow)

	require.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors, domain.FieldExpiryDate)
	assert.Contains(t, res.Errors, domain.FieldPassportNumber)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	data := domain.FieldMap{
		domain.FieldExpiryDate:     "not-a-date",
		domain.FieldPassportNumber: "pa234567",
	}

	res := validateAt(data, testNow)

	assert.Equal(t, "not-a-date", data[domain.FieldExpiryDate])
	assert.Equal(t, "pa234567", data[domain.FieldPassportNumber])
	assert.Equal(t, domain.FieldMap{
		domain.FieldExpiryDate:     "not-a-date",
		domain.FieldPassportNumber: "pa234567",
	}, res.Data)
}
