// Package template provides a Handlebars template engine used to render
// routing reports.
//
// Templates use Handlebars syntax and are compiled once and cached.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "error_code": "ERROR_001",
//	    "house_name": "Root",
//	    "frequency":  396,
//	    "confidence": 95.0,
//	}
//
//	out, err := engine.Render("{{error_code}} -> {{house_name}} ({{hz frequency}}, {{percent confidence}})", data)
//	// "ERROR_001 -> Root (396 Hz, 95.0%)"
//
// Available helpers:
//   - uppercase: Convert to uppercase
//   - default: Use default value if empty
//   - percent: Format a confidence value as "95.0%"
//   - hz: Format a frequency as "396 Hz"
//   - yesno: Render a boolean as yes/no
//   - inc: Add one to @index
//   - join: Join a string list with a separator
//   - repeat: Repeat a string n times
package template
