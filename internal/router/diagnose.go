package router

import (
	"fmt"

	"github.com/aescanero/nexus-router/internal/eval/cel"
	"go.uber.org/zap"
)

// Diagnosis is the exhaustion type produced by Diagnose
type Diagnosis string

const (
	// DiagnosisPorous means energy leaks through permeable boundaries
	DiagnosisPorous Diagnosis = "EXHAUSTION_POROUS"

	// DiagnosisDepleted means low energy with intact boundaries
	DiagnosisDepleted Diagnosis = "EXHAUSTION_DEPLETED"
)

// Indicator keys read by the diagnosis rules
const (
	IndicatorBoundaryPermeability = "boundary_permeability"
	IndicatorEnergyLevel          = "energy_level"
	IndicatorRecoveryRate         = "recovery_rate"
)

// DefaultIndicatorValue is used for any indicator the caller leaves out
const DefaultIndicatorValue = 0.5

// PorousCondition is the built-in rule for porous exhaustion.
// Both comparisons are strict: 0.6 permeability or 0.4 recovery is depleted.
const PorousCondition = "indicators.boundary_permeability > 0.6 && indicators.recovery_rate < 0.4"

// DiagnosisRule maps a CEL condition to a diagnosis
type DiagnosisRule struct {
	Condition string    `json:"condition"`
	Result    Diagnosis `json:"result"`
}

// DefaultDiagnosisRules returns the built-in rule set
func DefaultDiagnosisRules() []DiagnosisRule {
	return []DiagnosisRule{
		{Condition: PorousCondition, Result: DiagnosisPorous},
	}
}

// Diagnoser classifies indicator sets by evaluating rules in order,
// returning the fallback when none matches
type Diagnoser struct {
	evaluator *cel.Evaluator
	rules     []DiagnosisRule
	fallback  Diagnosis
	logger    *zap.Logger
}

// NewDiagnoser creates a diagnoser after validating every rule condition
func NewDiagnoser(rules []DiagnosisRule, fallback Diagnosis, logger *zap.Logger) (*Diagnoser, error) {
	if fallback == "" {
		return nil, fmt.Errorf("fallback diagnosis is required")
	}

	evaluator := cel.NewEvaluator()
	for i, rule := range rules {
		if rule.Condition == "" {
			return nil, fmt.Errorf("rule %d: condition is required", i)
		}
		if rule.Result == "" {
			return nil, fmt.Errorf("rule %d: result is required", i)
		}
		if err := evaluator.ValidateExpression(rule.Condition); err != nil {
			return nil, fmt.Errorf("rule %d: invalid condition: %w", i, err)
		}
	}

	return &Diagnoser{
		evaluator: evaluator,
		rules:     append([]DiagnosisRule(nil), rules...),
		fallback:  fallback,
		logger:    logger,
	}, nil
}

// DefaultDiagnoser returns a diagnoser with the built-in rules
func DefaultDiagnoser(logger *zap.Logger) *Diagnoser {
	d, err := NewDiagnoser(DefaultDiagnosisRules(), DiagnosisDepleted, logger)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in diagnosis rules: %v", err))
	}
	return d
}

// Diagnose classifies the indicators. Missing indicators default to
// DefaultIndicatorValue. It never fails: evaluation errors skip the rule.
func (d *Diagnoser) Diagnose(indicators map[string]float64) Diagnosis {
	values := WithDefaults(indicators)

	for i, rule := range d.rules {
		matched, err := d.evaluator.EvaluateBool(rule.Condition, values)
		if err != nil {
			d.logger.Warn("diagnosis rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			continue
		}

		if matched {
			d.logger.Debug("diagnosis rule matched",
				zap.Int("rule_index", i),
				zap.String("result", string(rule.Result)),
			)
			return rule.Result
		}
	}

	return d.fallback
}

// WithDefaults returns a copy of indicators with the three known
// indicators filled in when absent
func WithDefaults(indicators map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(indicators)+3)
	for k, v := range indicators {
		out[k] = v
	}
	for _, k := range []string{IndicatorBoundaryPermeability, IndicatorEnergyLevel, IndicatorRecoveryRate} {
		if _, ok := out[k]; !ok {
			out[k] = DefaultIndicatorValue
		}
	}
	return out
}
