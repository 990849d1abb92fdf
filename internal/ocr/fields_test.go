package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
)

func TestExtractFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.FieldMap
	}{
		{
			name: "full document",
			text: "Name: John Doe\nDOB: 01-02-1990\nPassport No: A1234567\nExpiry: 15/08/2030",
			want: domain.FieldMap{
				domain.FieldName:           "John Doe",
				domain.FieldDateOfBirth:    "1990-02-01",
				domain.FieldPassportNumber: "PA1234567",
				domain.FieldExpiryDate:     "2030-08-15",
			},
		},
		{
			name: "lowercase labels",
			text: "name: jane roe\ndob: 31/12/1985\npassport number: P7654321\nexpiry: 01-01-2031",
			want: domain.FieldMap{
				domain.FieldName:           "jane roe",
				domain.FieldDateOfBirth:    "1985-12-31",
				domain.FieldPassportNumber: "P7654321",
				domain.FieldExpiryDate:     "2031-01-01",
			},
		},
		{
			name: "passport without label suffix",
			text: "Passport: X9876543",
			want: domain.FieldMap{
				domain.FieldPassportNumber: "PX9876543",
			},
		},
		{
			name: "missing labels yield missing fields",
			text: "nothing relevant in this text",
			want: domain.FieldMap{},
		},
		{
			name: "empty text",
			text: "",
			want: domain.FieldMap{},
		},
		{
			name: "partial document",
			text: "DOB: 05-06-2001\nsome unrelated noise",
			want: domain.FieldMap{
				domain.FieldDateOfBirth: "2001-06-05",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFields(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "dash separated", input: "01-02-1990", want: "1990-02-01"},
		{name: "slash separated", input: "15/08/2030", want: "2030-08-15"},
		{name: "mixed separators", input: "15/08-2030", want: "2030-08-15"},
		{name: "two parts pass through", input: "01-1990", want: "01-1990"},
		{name: "four parts pass through", input: "01-02-03-1990", want: "01-02-03-1990"},
		{name: "no separators pass through", input: "01021990", want: "01021990"},
		{name: "empty pass through", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.input))
		})
	}
}

func TestNormalizePassport(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "prefix added", input: "A1234567", want: "PA1234567"},
		{name: "already prefixed is a no-op", input: "PA234567", want: "PA234567"},
		{name: "empty stays empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePassport(tt.input))
		})
	}

	// Idempotence: normalizing twice equals normalizing once.
	once := NormalizePassport("A1234567")
	assert.Equal(t, once, NormalizePassport(once))
}
