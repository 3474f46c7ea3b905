package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/aescanero/nexus-router/internal/eval/template"
	"github.com/aescanero/nexus-router/internal/router"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

const codesTemplate = `{{#each codes}}{{code}}  {{name}}
  house:       {{house}} ({{house_name}})
  frequency:   {{hz frequency}}
  confidence:  {{percent confidence}}
  blocking:    {{yesno blocking}}
  description: {{{description}}}
{{/each}}`

const routeTemplate = `{{#if blocked_by}}BLOCKED {{error_code}} (house {{house}}, {{house_name}}) blocked by {{blocked_by}}
{{else}}ROUTED  {{error_code}} -> house {{house}} ({{house_name}}), {{hz frequency}}, confidence {{percent confidence}}
{{/if}}{{#each annotations}}  {{key}}: {{{value}}}
{{/each}}`

const resolveTemplate = `RESOLVED {{code}} (active routes: {{active}})
`

const markTemplate = `MARKED  {{code}} unresolved
`

const summaryTemplate = `{{repeat "-" 60}}
active routes: {{count}}
{{#each routes}}  {{inc @index}}. {{error_code}} -> {{house_name}} ({{hz frequency}})
{{/each}}unresolved: {{default unresolved "none"}}
`

const diagnosisTemplate = `diagnosis: {{diagnosis}}
  boundary_permeability: {{boundary_permeability}}
  energy_level:          {{energy_level}}
  recovery_rate:         {{recovery_rate}}
`

const headingTemplate = `{{repeat "=" 60}}
{{{title}}}
{{repeat "=" 60}}
`

// renderer writes results as text or JSON
type renderer struct {
	engine *template.Engine
	format string
	out    io.Writer
}

func newRenderer(format string, out io.Writer) (*renderer, error) {
	if format != outputText && format != outputJSON {
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
	return &renderer{
		engine: template.NewEngine(),
		format: format,
		out:    out,
	}, nil
}

// render writes data through tmpl, or value as JSON in json mode
func (r *renderer) render(tmpl string, data map[string]interface{}, value interface{}) error {
	if r.format == outputJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}

	text, err := r.engine.Render(tmpl, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.out, text)
	return err
}

func (r *renderer) heading(title string) error {
	if r.format == outputJSON {
		return nil
	}
	return r.render(headingTemplate, map[string]interface{}{"title": title}, nil)
}

func (r *renderer) codes(records []codes.Record) error {
	views := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		views = append(views, map[string]interface{}{
			"code":        rec.Code,
			"name":        rec.Name,
			"house":       rec.House,
			"house_name":  rec.HouseName,
			"frequency":   rec.Frequency,
			"confidence":  rec.Confidence,
			"blocking":    rec.Blocking,
			"description": rec.Description,
		})
	}
	return r.render(codesTemplate, map[string]interface{}{"codes": views}, records)
}

func (r *renderer) route(route *router.Route) error {
	return r.render(routeTemplate, routeView(route), route)
}

func (r *renderer) resolved(code string, active int) error {
	return r.render(resolveTemplate,
		map[string]interface{}{"code": code, "active": active},
		map[string]interface{}{"resolved": code, "active_routes": active},
	)
}

func (r *renderer) marked(code string) error {
	return r.render(markTemplate,
		map[string]interface{}{"code": code},
		map[string]interface{}{"marked_unresolved": code},
	)
}

func (r *renderer) summary(active []router.Route, unresolved []string) error {
	views := make([]map[string]interface{}, 0, len(active))
	for i := range active {
		views = append(views, routeView(&active[i]))
	}

	unresolvedText := ""
	if len(unresolved) > 0 {
		unresolvedText = fmt.Sprint(unresolved)
	}

	return r.render(summaryTemplate,
		map[string]interface{}{
			"count":      len(active),
			"routes":     views,
			"unresolved": unresolvedText,
		},
		map[string]interface{}{
			"active_routes": active,
			"unresolved":    unresolved,
		},
	)
}

func (r *renderer) diagnosis(d router.Diagnosis, indicators map[string]float64) error {
	values := router.WithDefaults(indicators)
	return r.render(diagnosisTemplate,
		map[string]interface{}{
			"diagnosis":             string(d),
			"boundary_permeability": values[router.IndicatorBoundaryPermeability],
			"energy_level":          values[router.IndicatorEnergyLevel],
			"recovery_rate":         values[router.IndicatorRecoveryRate],
		},
		map[string]interface{}{
			"diagnosis":  d,
			"indicators": values,
		},
	)
}

// routeView flattens a route for templates, keeping annotation order
func routeView(route *router.Route) map[string]interface{} {
	annotations := make([]map[string]interface{}, 0, route.Annotations.Len())
	for _, k := range route.Annotations.Keys() {
		v, _ := route.Annotations.Get(k)
		annotations = append(annotations, map[string]interface{}{"key": k, "value": v})
	}

	return map[string]interface{}{
		"id":          route.ID,
		"error_code":  route.Code,
		"house":       route.House,
		"house_name":  route.HouseName,
		"frequency":   route.Frequency,
		"confidence":  route.Confidence,
		"blocked_by":  route.BlockedBy,
		"annotations": annotations,
	}
}
