package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e := NewEngine()

	data := map[string]interface{}{
		"error_code": "ERROR_001",
		"house_name": "Root",
		"frequency":  396,
		"confidence": 95.0,
	}

	out, err := e.Render("{{error_code}} -> {{house_name}} ({{hz frequency}}, {{percent confidence}})", data)
	require.NoError(t, err)
	assert.Equal(t, "ERROR_001 -> Root (396 Hz, 95.0%)", out)
}

func TestHelpers(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		want     string
	}{
		{name: "uppercase", template: "{{uppercase s}}", data: map[string]interface{}{"s": "root"}, want: "ROOT"},
		{name: "default empty", template: "{{default s \"N/A\"}}", data: map[string]interface{}{"s": ""}, want: "N/A"},
		{name: "default set", template: "{{default s \"N/A\"}}", data: map[string]interface{}{"s": "x"}, want: "x"},
		{name: "yesno", template: "{{yesno b}}", data: map[string]interface{}{"b": true}, want: "yes"},
		{name: "join", template: "{{join l \", \"}}", data: map[string]interface{}{"l": []string{"a", "b"}}, want: "a, b"},
		{name: "repeat", template: "{{repeat \"-\" 3}}", data: map[string]interface{}{}, want: "---"},
		{
			name:     "inc index",
			template: "{{#each l}}{{inc @index}}.{{this}} {{/each}}",
			data:     map[string]interface{}{"l": []string{"a", "b"}},
			want:     "1.a 2.b ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Render(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMultipleEngines(t *testing.T) {
	assert.NotPanics(t, func() {
		NewEngine()
		NewEngine()
	})
}

func TestTemplateCache(t *testing.T) {
	e := NewEngine()

	_, err := e.Render("{{a}}", map[string]interface{}{"a": 1})
	require.NoError(t, err)
	assert.Len(t, e.cache, 1)

	e.ClearCache()
	assert.Empty(t, e.cache)
}

func TestInvalidTemplate(t *testing.T) {
	e := NewEngine()

	assert.Error(t, e.ValidateTemplate("{{#if x}}"))
	_, err := e.Render("{{#if x}}", nil)
	assert.Error(t, err)
}
