// Package cel provides a CEL (Common Expression Language) evaluator for the
// diagnosis rules.
//
// CEL is a non-Turing complete expression language that provides fast, safe
// evaluation of threshold conditions. Rules read indicator values through the
// "indicators" map.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	indicators := map[string]float64{
//	    "boundary_permeability": 0.8,
//	    "recovery_rate":         0.2,
//	}
//
//	matched, err := evaluator.EvaluateBool(
//	    "indicators.boundary_permeability > 0.6 && indicators.recovery_rate < 0.4",
//	    indicators,
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - Arithmetic: +, -, *, /
//   - Map access: indicators.field, indicators["field"], has(indicators.field)
package cel
