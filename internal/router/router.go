package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownCode is returned when routing a code missing from the registry
var ErrUnknownCode = errors.New("unknown error code")

// Annotation keys set by the engine
const (
	KeyBreadcrumbs       = "ceremonial_breadcrumbs"
	KeyParadoxType       = "paradox_type"
	KeySynthesisApproach = "synthesis_approach"
)

// Values seeded by Synthesize
const (
	ParadoxBothAnd    = "both_and"
	ApproachIntegrate = "integrate_perspectives"
)

// Route is the result of a routing call. BlockedBy is empty for an
// active route and holds the blocking code otherwise.
type Route struct {
	ID          string      `json:"id"`
	Code        string      `json:"error_code"`
	House       int         `json:"house"`
	HouseName   string      `json:"house_name"`
	Frequency   int         `json:"frequency"`
	Confidence  float64     `json:"confidence_level"`
	RoutedAt    time.Time   `json:"routed_at"`
	BlockedBy   string      `json:"blocked_by,omitempty"`
	Annotations Annotations `json:"metadata"`
}

// Blocked reports whether another route deflected this one
func (r Route) Blocked() bool {
	return r.BlockedBy != ""
}

func (r Route) clone() Route {
	r.Annotations = r.Annotations.Clone()
	return r
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the time source for RoutedAt
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the route ID source
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithDiagnoser replaces the built-in diagnoser
func WithDiagnoser(d *Diagnoser) Option {
	return func(e *Engine) { e.diagnoser = d }
}

// WithMetrics enables Prometheus metrics
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine routes error codes against a registry and tracks active routes.
//
// Engine is not safe for concurrent use. The blocking check and the append
// in Route are separate steps, so callers sharing an engine across
// goroutines must serialize Route and Resolve themselves.
type Engine struct {
	registry  *codes.Registry
	state     *state
	diagnoser *Diagnoser
	metrics   *Metrics
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
}

// NewEngine creates a new engine over registry
func NewEngine(registry *codes.Registry, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		state:    newState(registry),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.diagnoser == nil {
		e.diagnoser = DefaultDiagnoser(logger)
	}
	return e
}

// Registry returns the registry the engine routes against
func (e *Engine) Registry() *codes.Registry {
	return e.registry
}

// Route routes code to its house. Caller annotations are copied onto the
// result. While a blocking code is active, any other code produces a
// blocked result that is not stored. The blocking code never blocks itself.
func (e *Engine) Route(code string, annotations Annotations) (*Route, error) {
	rec, ok := e.registry.Lookup(code)
	if !ok {
		e.logger.Warn("unknown code", zap.String("code", code))
		e.metrics.observeRoute(OutcomeUnknown, OutcomeUnknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, code)
	}

	route := &Route{
		ID:          e.newID(),
		Code:        rec.Code,
		House:       rec.House,
		HouseName:   rec.HouseName,
		Frequency:   rec.Frequency,
		Confidence:  rec.Confidence,
		RoutedAt:    e.now(),
		Annotations: annotations.Clone(),
	}

	if blocking := e.state.blockingActive(); blocking != "" && blocking != code {
		route.BlockedBy = blocking

		e.logger.Info("route blocked",
			zap.String("code", code),
			zap.String("blocked_by", blocking),
		)
		e.metrics.observeRoute(code, OutcomeBlocked)
		return route, nil
	}

	if rec.Breadcrumbs != "" {
		route.Annotations.Set(KeyBreadcrumbs, rec.Breadcrumbs)
	}

	e.state.add(route.clone())

	e.logger.Info("route active",
		zap.String("code", code),
		zap.String("route_id", route.ID),
		zap.Int("house", route.House),
		zap.String("house_name", route.HouseName),
		zap.Int("frequency", route.Frequency),
		zap.Int("active_routes", len(e.state.active)),
	)
	e.metrics.observeRoute(code, OutcomeActive)
	e.metrics.setActive(len(e.state.active))

	return route, nil
}

// Resolve removes every active route for code, letting blocked codes
// route again. Unknown or inactive codes are a no-op.
func (e *Engine) Resolve(code string) {
	removed := e.state.resolve(code)

	e.logger.Info("code resolved",
		zap.String("code", code),
		zap.Int("removed", removed),
		zap.Int("active_routes", len(e.state.active)),
	)
	if _, known := e.registry.Lookup(code); known {
		e.metrics.observeResolve(code)
	}
	e.metrics.setActive(len(e.state.active))
}

// MarkUnresolved records code as unresolved. Resolve clears the mark.
func (e *Engine) MarkUnresolved(code string) {
	e.state.markUnresolved(code)
	e.logger.Debug("code marked unresolved", zap.String("code", code))
}

// Diagnose classifies exhaustion from the indicators. It does not touch
// routing state.
func (e *Engine) Diagnose(indicators map[string]float64) Diagnosis {
	d := e.diagnoser.Diagnose(indicators)
	e.metrics.observeDiagnosis(d)
	return d
}

// Synthesize routes the paradox code with both/and metadata. Keys in pair
// override the seeded keys.
func (e *Engine) Synthesize(pair Annotations) (*Route, error) {
	annotations := NewAnnotations(
		KeyParadoxType, ParadoxBothAnd,
		KeySynthesisApproach, ApproachIntegrate,
	)
	annotations.Merge(pair)

	return e.Route(codes.StuckParadox, annotations)
}

// ActiveRoutes returns a copy of the active routes in insertion order
func (e *Engine) ActiveRoutes() []Route {
	return e.state.activeRoutes()
}

// Unresolved returns a copy of the unresolved codes in mark order
func (e *Engine) Unresolved() []string {
	return e.state.unresolvedCodes()
}

// Blocking returns the active blocking code, or ""
func (e *Engine) Blocking() string {
	return e.state.blockingActive()
}

// Reset discards all routing state
func (e *Engine) Reset() {
	e.state = newState(e.registry)
	e.metrics.setActive(0)
	e.logger.Debug("routing state reset")
}
