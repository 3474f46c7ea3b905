package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/aescanero/nexus-router/internal/router"
	"github.com/aescanero/nexus-router/internal/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newCodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the registered codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderer.codes(a.registry.Records())
		},
	}
}

type stepKind int

const (
	stepRoute stepKind = iota
	stepResolve
	stepMark
)

type step struct {
	kind stepKind
	code string
}

// parseStep reads CODE, resolve:CODE or mark:CODE
func parseStep(arg string) (step, error) {
	s := step{kind: stepRoute, code: arg}
	if prefix, code, ok := strings.Cut(arg, ":"); ok {
		switch prefix {
		case "resolve":
			s = step{kind: stepResolve, code: code}
		case "mark":
			s = step{kind: stepMark, code: code}
		default:
			return step{}, fmt.Errorf("unknown step %q (want CODE, resolve:CODE or mark:CODE)", arg)
		}
	}
	if s.code == "" {
		return step{}, fmt.Errorf("step %q has no code", arg)
	}
	return s, nil
}

func newRouteCmd(a *app) *cobra.Command {
	var annotate map[string]string

	cmd := &cobra.Command{
		Use:   "route STEP...",
		Short: "Run a sequence of route, resolve and mark steps",
		Long: `Run steps in order against a fresh engine. A step is one of:
  CODE          route the code
  resolve:CODE  resolve every active route for the code
  mark:CODE     mark the code unresolved`,
		Example: "  nexusctl route ERROR_001 ERROR_002 resolve:ERROR_001 ERROR_002",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := make([]step, 0, len(args))
			for _, arg := range args {
				s, err := parseStep(arg)
				if err != nil {
					return err
				}
				steps = append(steps, s)
			}

			engine, err := a.newEngine()
			if err != nil {
				return err
			}

			annotations := router.FromMap(annotate)
			for _, s := range steps {
				if err := a.runStep(engine, s, annotations); err != nil {
					return err
				}
			}

			return a.renderer.summary(engine.ActiveRoutes(), engine.Unresolved())
		},
	}

	cmd.Flags().StringToStringVar(&annotate, "annotate", nil, "annotation added to every route (key=value)")
	return cmd
}

func (a *app) runStep(engine *router.Engine, s step, annotations router.Annotations) error {
	switch s.kind {
	case stepResolve:
		engine.Resolve(s.code)
		return a.renderer.resolved(s.code, len(engine.ActiveRoutes()))
	case stepMark:
		engine.MarkUnresolved(s.code)
		return a.renderer.marked(s.code)
	default:
		route, err := engine.Route(s.code, annotations)
		if err != nil {
			return err
		}
		return a.renderer.route(route)
	}
}

func newDiagnoseCmd(a *app) *cobra.Command {
	var permeability, energy, recovery float64

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Classify exhaustion as porous or depleted",
		Long: `Classify exhaustion from three indicators in [0,1].
Indicators left unset default to 0.5.`,
		Example: "  nexusctl diagnose --permeability 0.8 --energy 0.3 --recovery 0.2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			indicators := map[string]float64{}
			if cmd.Flags().Changed("permeability") {
				indicators[router.IndicatorBoundaryPermeability] = permeability
			}
			if cmd.Flags().Changed("energy") {
				indicators[router.IndicatorEnergyLevel] = energy
			}
			if cmd.Flags().Changed("recovery") {
				indicators[router.IndicatorRecoveryRate] = recovery
			}

			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			return a.renderer.diagnosis(engine.Diagnose(indicators), indicators)
		},
	}

	cmd.Flags().Float64Var(&permeability, "permeability", router.DefaultIndicatorValue, "boundary permeability")
	cmd.Flags().Float64Var(&energy, "energy", router.DefaultIndicatorValue, "energy level")
	cmd.Flags().Float64Var(&recovery, "recovery", router.DefaultIndicatorValue, "recovery rate")
	return cmd
}

func newSynthesizeCmd(a *app) *cobra.Command {
	var optionA, optionB string
	var set map[string]string

	cmd := &cobra.Command{
		Use:     "synthesize",
		Short:   "Route a both/and paradox with two options",
		Example: `  nexusctl synthesize --option-a "Focus on career growth" --option-b "Focus on personal relationships"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pair router.Annotations
			if cmd.Flags().Changed("option-a") {
				pair.Set("option_a", optionA)
			}
			if cmd.Flags().Changed("option-b") {
				pair.Set("option_b", optionB)
			}
			pair.Merge(router.FromMap(set))

			engine, err := a.newEngine()
			if err != nil {
				return err
			}

			route, err := engine.Synthesize(pair)
			if err != nil {
				return err
			}
			return a.renderer.route(route)
		},
	}

	cmd.Flags().StringVar(&optionA, "option-a", "", "first perspective")
	cmd.Flags().StringVar(&optionB, "option-b", "", "second perspective")
	cmd.Flags().StringToStringVar(&set, "set", nil, "extra pair metadata (key=value)")
	return cmd
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through blocking, resolve, diagnosis and synthesis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.newEngine()
			if err != nil {
				return err
			}
			return a.runDemo(engine)
		},
	}
}

func (a *app) runDemo(engine *router.Engine) error {
	r := a.renderer
	none := router.Annotations{}

	if err := r.heading("1. " + codes.Dissociation + " (blocks other routes)"); err != nil {
		return err
	}
	if err := a.runStep(engine, step{kind: stepRoute, code: codes.Dissociation}, none); err != nil {
		return err
	}

	if err := r.heading("2. " + codes.ExhaustionPorous + " while " + codes.Dissociation + " is active"); err != nil {
		return err
	}
	if err := a.runStep(engine, step{kind: stepRoute, code: codes.ExhaustionPorous}, none); err != nil {
		return err
	}

	if err := r.heading("3. Resolve " + codes.Dissociation + " and route " + codes.ExhaustionPorous + " again"); err != nil {
		return err
	}
	if err := a.runStep(engine, step{kind: stepResolve, code: codes.Dissociation}, none); err != nil {
		return err
	}
	if err := a.runStep(engine, step{kind: stepRoute, code: codes.ExhaustionPorous}, none); err != nil {
		return err
	}

	if err := r.heading("4. Exhaustion type differentiation"); err != nil {
		return err
	}
	for _, indicators := range []map[string]float64{
		{router.IndicatorBoundaryPermeability: 0.8, router.IndicatorEnergyLevel: 0.3, router.IndicatorRecoveryRate: 0.2},
		{router.IndicatorBoundaryPermeability: 0.3, router.IndicatorEnergyLevel: 0.2, router.IndicatorRecoveryRate: 0.2},
	} {
		if err := r.diagnosis(engine.Diagnose(indicators), indicators); err != nil {
			return err
		}
	}

	if err := r.heading("5. " + codes.StuckParadox + " both/and synthesis"); err != nil {
		return err
	}
	route, err := engine.Synthesize(router.NewAnnotations(
		"option_a", "Focus on career growth",
		"option_b", "Focus on personal relationships",
		"synthesis_required", true,
	))
	if err != nil {
		return err
	}
	if err := r.route(route); err != nil {
		return err
	}

	if err := r.heading("6. Active routes"); err != nil {
		return err
	}
	return r.summary(engine.ActiveRoutes(), engine.Unresolved())
}

func newSendCmd(a *app) *cobra.Command {
	var (
		op         string
		code       string
		redisAddr  string
		annotate   map[string]string
		indicators map[string]string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a request to a running nexus worker",
		Long: `Publish one request on the worker's request stream.
Ops: route, resolve, mark_unresolved, diagnose, synthesize, reset.`,
		Example: "  nexusctl send --op route --code ERROR_001",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildRequest(op, code, annotate, indicators)
			if err != nil {
				return err
			}

			addr := a.cfg.RedisAddr
			if cmd.Flags().Changed("redis-addr") {
				addr = redisAddr
			}
			client := redis.NewClient(&redis.Options{
				Addr:     addr,
				Password: a.cfg.RedisPassword,
				DB:       a.cfg.RedisDB,
			})
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			id, err := worker.Enqueue(ctx, client, a.cfg.StreamKey, request)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent %s %s (request %s, message %s)\n",
				request.Op, request.Code, request.RequestID, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&op, "op", worker.OpRoute, "operation")
	cmd.Flags().StringVar(&code, "code", "", "error code for route, resolve and mark_unresolved")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address (default $REDIS_ADDR)")
	cmd.Flags().StringToStringVar(&annotate, "annotate", nil, "annotation (key=value)")
	cmd.Flags().StringToStringVar(&indicators, "indicator", nil, "diagnosis indicator (name=value)")
	return cmd
}

// buildRequest validates send flags and builds the stream request
func buildRequest(op, code string, annotate, indicators map[string]string) (*worker.Request, error) {
	switch op {
	case worker.OpRoute, worker.OpResolve, worker.OpMarkUnresolved:
		if code == "" {
			return nil, fmt.Errorf("--code is required for %s", op)
		}
	case worker.OpDiagnose, worker.OpSynthesize, worker.OpReset:
	default:
		return nil, fmt.Errorf("unknown op %q", op)
	}

	request := &worker.Request{
		RequestID:   uuid.NewString(),
		Op:          op,
		Code:        code,
		Annotations: router.FromMap(annotate),
	}

	if len(indicators) > 0 {
		request.Indicators = make(map[string]float64, len(indicators))
		for name, raw := range indicators {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("indicator %s: %w", name, err)
			}
			request.Indicators[name] = v
		}
	}

	return request, nil
}
