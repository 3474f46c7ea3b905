// Package router implements the routing engine for error codes.
//
// The engine looks codes up in a codes.Registry, builds a Route for every
// call and keeps the unblocked ones as active routes. One registry record
// (ERROR_001 by default) is flagged as blocking: while it is active every
// other code is deflected with a blocked result until it is resolved.
//
// Example routing:
//
//	engine := router.NewEngine(codes.Default(), logger)
//
//	route, err := engine.Route("ERROR_001", router.Annotations{})
//	// route.Blocked() == false
//
//	route, err = engine.Route("ERROR_002", router.Annotations{})
//	// route.BlockedBy == "ERROR_001", not stored
//
//	engine.Resolve("ERROR_001")
//	route, err = engine.Route("ERROR_002", router.Annotations{})
//	// active again
//
// Example diagnosis:
//
//	d := engine.Diagnose(map[string]float64{
//	    "boundary_permeability": 0.8,
//	    "energy_level":          0.3,
//	    "recovery_rate":         0.2,
//	})
//	// d == router.DiagnosisPorous
//
// Example synthesis:
//
//	route, err := engine.Synthesize(router.NewAnnotations(
//	    "option_a", "Focus on career growth",
//	    "option_b", "Focus on personal relationships",
//	))
//	// route.Annotations carries paradox_type=both_and,
//	// synthesis_approach=integrate_perspectives and both options
package router
