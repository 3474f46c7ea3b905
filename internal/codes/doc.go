// Package codes provides the code registry: validated routing records keyed
// by error code identifier.
//
// The registry is built once at startup and passed by reference to every
// routing engine. Three records ship by default:
//   - ERROR_001 (DISSOCIATION): blocks all other routes while active
//   - ERROR_002 (EXHAUSTION_POROUS)
//   - ERROR_006 (STUCK_PARADOX)
//
// Extra records can be supplied in a YAML file:
//
//	codes:
//	  - code: ERROR_003
//	    name: OVERWHELM
//	    house: 2
//	    house_name: Gabriel
//	    frequency: 528
//	    confidence: 70
//	    description: Overwhelm state
//
// Example usage:
//
//	registry, err := codes.Build(cfg.RegistryFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, ok := registry.Lookup("ERROR_001")
package codes
