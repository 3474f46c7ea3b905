package router

import "github.com/aescanero/nexus-router/internal/codes"

// state tracks active routes and explicitly unresolved codes.
// It is owned by a single Engine and is not safe for concurrent use.
type state struct {
	registry   *codes.Registry
	active     []Route
	unresolved []string
}

func newState(registry *codes.Registry) *state {
	return &state{registry: registry}
}

// blockingActive returns the code of the first active route whose record
// blocks other routes, or "" when none does
func (s *state) blockingActive() string {
	for _, r := range s.active {
		rec, ok := s.registry.Lookup(r.Code)
		if ok && rec.Blocking {
			return r.Code
		}
	}
	return ""
}

// add appends a route in insertion order
func (s *state) add(r Route) {
	s.active = append(s.active, r)
}

// resolve removes every active route for code and unmarks it.
// It returns the number of routes removed.
func (s *state) resolve(code string) int {
	kept := s.active[:0]
	for _, r := range s.active {
		if r.Code != code {
			kept = append(kept, r)
		}
	}
	removed := len(s.active) - len(kept)
	// drop references held past the new length
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = Route{}
	}
	s.active = kept

	for i, c := range s.unresolved {
		if c == code {
			s.unresolved = append(s.unresolved[:i], s.unresolved[i+1:]...)
			break
		}
	}

	return removed
}

// markUnresolved records code once, keeping mark order
func (s *state) markUnresolved(code string) {
	for _, c := range s.unresolved {
		if c == code {
			return
		}
	}
	s.unresolved = append(s.unresolved, code)
}

func (s *state) activeRoutes() []Route {
	out := make([]Route, len(s.active))
	for i, r := range s.active {
		out[i] = r.clone()
	}
	return out
}

func (s *state) unresolvedCodes() []string {
	out := make([]string, len(s.unresolved))
	copy(out, s.unresolved)
	return out
}
