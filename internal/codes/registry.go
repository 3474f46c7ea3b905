package codes

import "fmt"

// Identifiers of the built-in records
const (
	Dissociation     = "ERROR_001"
	ExhaustionPorous = "ERROR_002"
	StuckParadox     = "ERROR_006"
)

var (
	dissociationRecord = mustRecord(Record{
		Code:        Dissociation,
		Name:        "DISSOCIATION",
		House:       0,
		HouseName:   "Root",
		Frequency:   396,
		Confidence:  95.0,
		Description: "Dissociation state requiring immediate grounding",
		Breadcrumbs: "Liberation from fear and guilt",
		Blocking:    true,
	})

	exhaustionPorousRecord = mustRecord(Record{
		Code:        ExhaustionPorous,
		Name:        "EXHAUSTION_POROUS",
		House:       4,
		HouseName:   "Michael",
		Frequency:   741,
		Confidence:  85.0,
		Description: "Porous exhaustion state - energy leaks through boundaries",
		Breadcrumbs: "Awakening intuition and consciousness expansion",
	})

	stuckParadoxRecord = mustRecord(Record{
		Code:        StuckParadox,
		Name:        "STUCK_PARADOX",
		House:       5,
		HouseName:   "Jophiel",
		Frequency:   639,
		Confidence:  80.0,
		Description: "Paradox state requiring synthesis of both/and thinking",
		Breadcrumbs: "Harmonizing relationships and connecting hearts",
	})
)

// DefaultRecords returns the built-in records in registration order
func DefaultRecords() []Record {
	return []Record{dissociationRecord, exhaustionPorousRecord, stuckParadoxRecord}
}

// Registry is an immutable code -> record mapping.
// It is built once and shared by reference; it has no mutation methods.
type Registry struct {
	records map[string]Record
	order   []string
}

// NewRegistry validates the records and builds a registry
func NewRegistry(records ...Record) (*Registry, error) {
	r := &Registry{
		records: make(map[string]Record, len(records)),
		order:   make([]string, 0, len(records)),
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.records[rec.Code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, rec.Code)
		}
		r.records[rec.Code] = rec
		r.order = append(r.order, rec.Code)
	}

	return r, nil
}

// Default returns a registry holding the built-in records
func Default() *Registry {
	r, err := NewRegistry(DefaultRecords()...)
	if err != nil {
		panic(fmt.Sprintf("failed to build default registry: %v", err))
	}
	return r
}

// Lookup returns the record for code
func (r *Registry) Lookup(code string) (Record, bool) {
	rec, ok := r.records[code]
	return rec, ok
}

// Codes returns the registered identifiers in registration order
func (r *Registry) Codes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Records returns the registered records in registration order
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.records[code])
	}
	return out
}

// Len returns the number of registered records
func (r *Registry) Len() int {
	return len(r.order)
}
