// Package verify validates a structured field map against business rules.
// Validation is stateless: it never mutates its input and never touches
// storage, and malformed values become field-level errors rather than faults.
package verify

import (
	"regexp"
	"strings"
	"time"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
)

const dateLayout = "2006-01-02"

var passportFormat = regexp.MustCompile(`^P[A-Z0-9]{7}$`)

// Result reports the outcome of validating one field map. Valid is true iff
// Errors is empty; Data echoes the original input.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
	Data   domain.FieldMap   `json:"data"`
}

// Validate applies each rule independently against the current date.
func Validate(data domain.FieldMap) Result {
	return validateAt(data, time.Now())
}

func validateAt(data domain.FieldMap, now time.Time) Result {
	errs := make(map[string]string)

	if v, ok := data[domain.FieldExpiryDate]; ok {
		if expiry, err := time.ParseInLocation(dateLayout, v, time.UTC); err != nil {
			errs[domain.FieldExpiryDate] = "Invalid date format (YYYY-MM-DD)"
		} else {
			y, m, d := now.Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			if !expiry.After(today) {
				errs[domain.FieldExpiryDate] = "Expiry must be in the future"
			}
		}
	}

	if v, ok := data[domain.FieldPassportNumber]; ok {
		if !passportFormat.MatchString(strings.ToUpper(v)) {
			errs[domain.FieldPassportNumber] = "Invalid passport format (P[A-Z0-9]{7})"
		}
	}

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
		Data:   data,
	}
}
