package codes

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{Dissociation, ExhaustionPorous, StuckParadox}, r.Codes())
	assert.Equal(t, 3, r.Len())

	rec, ok := r.Lookup(Dissociation)
	require.True(t, ok)
	assert.Equal(t, "DISSOCIATION", rec.Name)
	assert.Equal(t, 0, rec.House)
	assert.Equal(t, "Root", rec.HouseName)
	assert.Equal(t, 396, rec.Frequency)
	assert.Equal(t, 95.0, rec.Confidence)
	assert.True(t, rec.Blocking)

	rec, ok = r.Lookup(ExhaustionPorous)
	require.True(t, ok)
	assert.Equal(t, 4, rec.House)
	assert.Equal(t, "Michael", rec.HouseName)
	assert.Equal(t, 741, rec.Frequency)
	assert.False(t, rec.Blocking)

	rec, ok = r.Lookup(StuckParadox)
	require.True(t, ok)
	assert.Equal(t, 5, rec.House)
	assert.Equal(t, 639, rec.Frequency)
	assert.Contains(t, rec.Description, "both/and")
	assert.False(t, rec.Blocking)
}

func TestLookupMiss(t *testing.T) {
	_, ok := Default().Lookup("ERROR_999")
	assert.False(t, ok)
}

func TestRecordValidation(t *testing.T) {
	base := Record{Code: "ERROR_010", Frequency: 100, Confidence: 50}

	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *Record) {}},
		{name: "confidence lower bound", mutate: func(r *Record) { r.Confidence = 0 }},
		{name: "confidence upper bound", mutate: func(r *Record) { r.Confidence = 100 }},
		{name: "confidence above range", mutate: func(r *Record) { r.Confidence = 100.5 }, wantErr: true},
		{name: "confidence negative", mutate: func(r *Record) { r.Confidence = -1 }, wantErr: true},
		{name: "confidence NaN", mutate: func(r *Record) { r.Confidence = math.NaN() }, wantErr: true},
		{name: "confidence infinite", mutate: func(r *Record) { r.Confidence = math.Inf(1) }, wantErr: true},
		{name: "zero frequency", mutate: func(r *Record) { r.Frequency = 0 }, wantErr: true},
		{name: "negative frequency", mutate: func(r *Record) { r.Frequency = -396 }, wantErr: true},
		{name: "empty code", mutate: func(r *Record) { r.Code = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base
			tt.mutate(&rec)
			_, err := NewRecord(rec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	_, err := NewRegistry(Record{Code: "ERROR_010", Frequency: 10, Confidence: 150})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewRegistry(DefaultRecords()[0], DefaultRecords()[0])
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestRecordsReturnsCopy(t *testing.T) {
	r := Default()
	recs := r.Records()
	recs[0].Blocking = false

	rec, _ := r.Lookup(Dissociation)
	assert.True(t, rec.Blocking)
}

func TestParse(t *testing.T) {
	data := []byte(`
codes:
  - code: ERROR_003
    name: OVERWHELM
    house: 2
    house_name: Gabriel
    frequency: 528
    confidence: 70
    description: Overwhelm state
    ceremonial_breadcrumbs: Transformation and miracles
`)
	recs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ERROR_003", recs[0].Code)
	assert.Equal(t, "Gabriel", recs[0].HouseName)
	assert.Equal(t, 528, recs[0].Frequency)
	assert.Equal(t, "Transformation and miracles", recs[0].Breadcrumbs)
	assert.False(t, recs[0].Blocking)
}

func TestParseInvalidRecord(t *testing.T) {
	_, err := Parse([]byte("codes:\n  - code: ERROR_003\n    frequency: 0\n    confidence: 10\n"))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = Parse([]byte("codes:\n  - code: ERROR_009\n    frequency: 100\n    confidence: .nan\n"))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
codes:
  - code: ERROR_050
    frequency: 174
    confidence: 99
    blocking: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocking")

	recs, err := Parse([]byte(`
codes:
  - code: ERROR_050
    frequency: 174
    confidence: 99
    blocks_other_routes: true
`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Blocking)
}

func TestParseEmpty(t *testing.T) {
	recs, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBuild(t *testing.T) {
	r, err := Build("")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
codes:
  - code: ERROR_004
    name: SCATTERED
    house: 3
    house_name: Raphael
    frequency: 417
    confidence: 65
    description: Scattered focus
`), 0o600))

	r, err = Build(path)
	require.NoError(t, err)
	assert.Equal(t, []string{Dissociation, ExhaustionPorous, StuckParadox, "ERROR_004"}, r.Codes())

	_, err = Build(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildRejectsDuplicateOfDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
codes:
  - code: ERROR_001
    frequency: 1
    confidence: 1
`), 0o600))

	_, err := Build(path)
	assert.ErrorIs(t, err, ErrDuplicateCode)
}
