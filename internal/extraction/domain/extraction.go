package domain

import "time"

// Extraction status constants. The pipeline moves an extraction from
// processing to exactly one of completed or error; submission moves it to
// submitted from any prior status, any number of times.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusSubmitted  = "submitted"
)

// Document field names produced by the field extractor.
const (
	FieldName           = "name"
	FieldDateOfBirth    = "dob"
	FieldPassportNumber = "passport_number"
	FieldExpiryDate     = "expiry_date"
)

// Extraction is the cached view of one document's path through the pipeline.
// The durable row is authoritative; this value is the fast-read copy.
type Extraction struct {
	ID        string
	Status    string
	RawText   string
	HasText   bool
	Fields    FieldMap
	Verified  FieldMap
	Cause     string // human-readable failure cause, cache-only
	SourceRef string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so cached entries never alias caller maps.
func (e *Extraction) Clone() *Extraction {
	if e == nil {
		return nil
	}
	c := *e
	c.Fields = e.Fields.Clone()
	c.Verified = e.Verified.Clone()
	return &c
}
