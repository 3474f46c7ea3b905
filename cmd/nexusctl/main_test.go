package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/aescanero/nexus-router/internal/router"
	"github.com/aescanero/nexus-router/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		arg     string
		want    step
		wantErr bool
	}{
		{arg: "ERROR_001", want: step{kind: stepRoute, code: "ERROR_001"}},
		{arg: "resolve:ERROR_001", want: step{kind: stepResolve, code: "ERROR_001"}},
		{arg: "mark:ERROR_006", want: step{kind: stepMark, code: "ERROR_006"}},
		{arg: "resolve:", wantErr: true},
		{arg: "drop:ERROR_001", wantErr: true},
		{arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseStep(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteCommandBlocking(t *testing.T) {
	out, err := run(t, "route", codes.Dissociation, codes.ExhaustionPorous, "resolve:"+codes.Dissociation, codes.ExhaustionPorous)
	require.NoError(t, err)

	assert.Contains(t, out, "ROUTED  ERROR_001 -> house 0 (Root)")
	assert.Contains(t, out, "BLOCKED ERROR_002")
	assert.Contains(t, out, "blocked by ERROR_001")
	assert.Contains(t, out, "RESOLVED ERROR_001 (active routes: 0)")
	assert.Contains(t, out, "ROUTED  ERROR_002 -> house 4 (Michael)")
	assert.Contains(t, out, "active routes: 1")
	assert.Contains(t, out, "unresolved: none")
}

func TestRouteCommandMarkAndAnnotate(t *testing.T) {
	out, err := run(t, "route", "--annotate", "session=abc", codes.StuckParadox, "mark:"+codes.StuckParadox)
	require.NoError(t, err)

	assert.Contains(t, out, "session: abc")
	assert.Contains(t, out, "MARKED  ERROR_006 unresolved")
	assert.Contains(t, out, "unresolved: [ERROR_006]")
}

func TestRouteCommandUnknownCode(t *testing.T) {
	_, err := run(t, "route", "ERROR_999")
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrUnknownCode)
}

func TestCodesCommandJSON(t *testing.T) {
	out, err := run(t, "-o", "json", "codes")
	require.NoError(t, err)

	var records []codes.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, codes.Dissociation, records[0].Code)
	assert.True(t, records[0].Blocking)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "-o", "xml", "codes")
	assert.Error(t, err)
}

func TestDiagnoseCommand(t *testing.T) {
	out, err := run(t, "diagnose", "--permeability", "0.8", "--recovery", "0.2")
	require.NoError(t, err)
	assert.Contains(t, out, "diagnosis: "+string(router.DiagnosisPorous))
	assert.Contains(t, out, "energy_level:          0.5")

	out, err = run(t, "diagnose")
	require.NoError(t, err)
	assert.Contains(t, out, "diagnosis: "+string(router.DiagnosisDepleted))
}

func TestSynthesizeCommandJSON(t *testing.T) {
	out, err := run(t, "-o", "json", "synthesize", "--option-a", "rest", "--option-b", "work", "--set", "paradox_type=custom")
	require.NoError(t, err)

	var route router.Route
	require.NoError(t, json.Unmarshal([]byte(out), &route))
	assert.Equal(t, codes.StuckParadox, route.Code)
	assert.Equal(t, "rest", route.Annotations.String("option_a"))
	assert.Equal(t, "custom", route.Annotations.String(router.KeyParadoxType))
	assert.Equal(t, router.ApproachIntegrate, route.Annotations.String(router.KeySynthesisApproach))
}

func TestDemoCommand(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "BLOCKED ERROR_002")
	assert.Contains(t, out, "diagnosis: "+string(router.DiagnosisPorous))
	assert.Contains(t, out, "diagnosis: "+string(router.DiagnosisDepleted))
	assert.Contains(t, out, "paradox_type: both_and")
	assert.Contains(t, out, "synthesis_approach: integrate_perspectives")
	assert.Contains(t, out, "active routes: 2")
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest(worker.OpRoute, codes.Dissociation, map[string]string{"b": "2", "a": "1"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, []string{"a", "b"}, req.Annotations.Keys())
	assert.Nil(t, req.Indicators)

	req, err = buildRequest(worker.OpDiagnose, "", nil, map[string]string{router.IndicatorEnergyLevel: "0.25"})
	require.NoError(t, err)
	assert.Equal(t, 0.25, req.Indicators[router.IndicatorEnergyLevel])

	_, err = buildRequest(worker.OpResolve, "", nil, nil)
	assert.Error(t, err)

	_, err = buildRequest("explode", "", nil, nil)
	assert.Error(t, err)

	_, err = buildRequest(worker.OpDiagnose, "", nil, map[string]string{"energy_level": "high"})
	assert.Error(t, err)
}
