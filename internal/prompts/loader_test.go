package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("tailoring.json", "tailor-resume")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Hard rules")

	_, err = Get("nonexistent.json", "tailor-resume")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get("tailoring.json", "nonexistent-key")
	assert.ErrorContains(t, err, `prompt key "nonexistent-key" not found`)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{"single", "Role: {{.Role}}", map[string]string{"Role": "Engineer"}, "Role: Engineer"},
		{"repeated", "{{.N}} and {{.N}}", map[string]string{"N": "14"}, "14 and 14"},
		{"missing left alone", "{{.Role}} at {{.Company}}", map[string]string{"Role": "Engineer"}, "Engineer at {{.Company}}"},
		{"value not re-expanded", "{{.JD}} / {{.Role}}", map[string]string{"JD": "use {{.Role}}", "Role": "Engineer"}, "use {{.Role}} / Engineer"},
		{"latex braces untouched", `\textbf{ {{.Name}} }`, map[string]string{"Name": "Alex"}, `\textbf{ Alex }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestMissing(t *testing.T) {
	got := Missing("{{.B}} {{.A}} {{.B}} {{.C}}", map[string]string{"C": ""})
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestRender_TailoringTemplatesAreComplete(t *testing.T) {
	data := map[string]string{
		"Instructions":   "be concise",
		"Company":        "Acme",
		"Role":           "Engineer",
		"URL":            "https://example.com",
		"JobDescription": "Build things.",
		"Master":         `\documentclass{article}`,
		"BulletCount":    "14",
		"Feedback":       "candidate has 9 bullets",
	}

	for _, key := range []string{"instructions", "tailor-resume", "corrective"} {
		out, err := Render("tailoring.json", key, data)
		require.NoError(t, err, key)
		assert.NotContains(t, out, "{{.", key)
	}
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render("tailoring.json", "corrective", map[string]string{"Feedback": "x"})
	assert.ErrorContains(t, err, "has no value for BulletCount")
}
