package ocr

import (
	"regexp"
	"strings"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
)

// Label-anchored extraction rules. Each rule looks for a case-insensitive
// label token followed by a value pattern; a label that never appears simply
// leaves the field out of the result.
var (
	namePattern     = regexp.MustCompile(`(?i)Name[:\s]+([A-Za-z\s]+)`)
	dobPattern      = regexp.MustCompile(`(?i)DOB[:\s]+([0-9]{2}[-/][0-9]{2}[-/][0-9]{4})`)
	expiryPattern   = regexp.MustCompile(`(?i)Expiry[:\s]+([0-9]{2}[-/][0-9]{2}[-/][0-9]{4})`)
	passportPattern = regexp.MustCompile(`(?i)Passport\s*(?:No\.?|Number)?[:\s]+([A-Z0-9]+)`)
)

// ExtractFields applies the pattern rules to recognized text and returns the
// structured field map with dates and passport numbers normalized. Malformed
// text never fails here; at worst a field is missing or left unnormalized.
// Rejecting bad values is the verifier's job.
func ExtractFields(text string) domain.FieldMap {
	fields := make(domain.FieldMap)

	if v, ok := findValue(namePattern, text); ok {
		fields[domain.FieldName] = v
	}
	if v, ok := findValue(dobPattern, text); ok {
		fields[domain.FieldDateOfBirth] = NormalizeDate(v)
	}
	if v, ok := findValue(passportPattern, text); ok {
		fields[domain.FieldPassportNumber] = NormalizePassport(v)
	}
	if v, ok := findValue(expiryPattern, text); ok {
		fields[domain.FieldExpiryDate] = NormalizeDate(v)
	}

	return fields
}

func findValue(pattern *regexp.Regexp, text string) (string, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// NormalizeDate rewrites DD-MM-YYYY or DD/MM/YYYY into YYYY-MM-DD. A value
// that does not split into exactly three components is passed through
// unchanged; downstream verification is the place to reject it.
func NormalizeDate(d string) string {
	parts := strings.Split(strings.ReplaceAll(d, "/", "-"), "-")
	if len(parts) != 3 {
		return d
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// NormalizePassport prepends the leading "P" when missing. Idempotent, and an
// empty value is left empty rather than becoming a bare "P".
func NormalizePassport(v string) string {
	if v == "" || strings.HasPrefix(v, "P") {
		return v
	}
	return "P" + v
}
