package codes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when a record fails validation
	ErrInvalidRecord = errors.New("invalid code record")

	// ErrDuplicateCode is returned when two records share an identifier
	ErrDuplicateCode = errors.New("duplicate code")
)

// Record holds the routing metadata for a single error code
type Record struct {
	Code        string  `json:"code" yaml:"code"`
	Name        string  `json:"name" yaml:"name"`
	House       int     `json:"house" yaml:"house"`
	HouseName   string  `json:"house_name" yaml:"house_name"`
	Frequency   int     `json:"frequency" yaml:"frequency"`   // Hz
	Confidence  float64 `json:"confidence" yaml:"confidence"` // 0-100
	Description string  `json:"description" yaml:"description"`
	Breadcrumbs string  `json:"ceremonial_breadcrumbs,omitempty" yaml:"ceremonial_breadcrumbs,omitempty"`
	Blocking    bool    `json:"blocks_other_routes" yaml:"blocks_other_routes"`
}

// NewRecord validates r and returns it
func NewRecord(r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the record invariants
func (r Record) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidRecord)
	}
	if !(r.Confidence >= 0 && r.Confidence <= 100) {
		return fmt.Errorf("%w: %s: confidence must be between 0 and 100, got %v",
			ErrInvalidRecord, r.Code, r.Confidence)
	}
	if r.Frequency <= 0 {
		return fmt.Errorf("%w: %s: frequency must be positive, got %d",
			ErrInvalidRecord, r.Code, r.Frequency)
	}
	return nil
}

// mustRecord is used for the built-in records only
func mustRecord(r Record) Record {
	rec, err := NewRecord(r)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in record: %v", err))
	}
	return rec
}
