package notion

import (
	"strconv"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Property types this client knows how to read or write
const (
	TypeTitle    = "title"
	TypeRichText = "rich_text"
	TypeSelect   = "select"
	TypeStatus   = "status"
	TypeURL      = "url"
	TypeNumber   = "number"
)

// Property names looked up on a database, in preference order
var (
	companyNames     = []string{"Company"}
	roleNames        = []string{"Role"}
	urlNames         = []string{"Job URL", "Job Link", "URL"}
	descriptionNames = []string{"Job Description", "JD", "Description"}
)

// Property names written back after a run
const (
	PropStatus          = "Status"
	PropErrors          = "Errors"
	PropRunID           = "Run ID"
	PropModel           = "Model"
	PropPromptVersion   = "Prompt version"
	PropResumePDF       = "Resume PDF"
	PropResumeTeX       = "Resume Latex"
	PropFitScore        = "Fit Score"
	PropKeywordCoverage = "Keyword Coverage"
)

// PropertySchema is one column of a database
type PropertySchema struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema maps database property names to their definitions
type Schema map[string]PropertySchema

// Names returns the property names of the schema
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// Resolve returns the schema property matching the first candidate, see ResolveProperty
func (s Schema) Resolve(candidates ...string) (PropertySchema, bool) {
	name, ok := ResolveProperty(s.Names(), candidates...)
	if !ok {
		return PropertySchema{}, false
	}
	prop := s[name]
	if prop.Name == "" {
		prop.Name = name
	}
	return prop, true
}

// ResolveProperty finds the actual property name for a list of candidates. Matching runs in
// three passes, each trying the candidates in order: exact name, then case- and
// whitespace-folded name, then name with surrounding spaces trimmed.
func ResolveProperty(names []string, candidates ...string) (string, bool) {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for _, c := range candidates {
		if present[c] {
			return c, true
		}
	}

	normalized := make(map[string]string, len(names))
	for _, n := range names {
		key := normalizeName(n)
		if _, dup := normalized[key]; !dup || n < normalized[key] {
			normalized[key] = n
		}
	}
	for _, c := range candidates {
		if n, ok := normalized[normalizeName(c)]; ok {
			return n, true
		}
	}

	for _, c := range candidates {
		for _, n := range names {
			if strings.TrimSpace(n) == strings.TrimSpace(c) {
				return n, true
			}
		}
	}
	return "", false
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// plainText reads the text of a title, rich_text, select, status or url property
func plainText(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		return joinText(v.Title)
	case *notionapi.RichTextProperty:
		return joinText(v.RichText)
	case *notionapi.SelectProperty:
		return v.Select.Name
	case *notionapi.StatusProperty:
		return v.Status.Name
	case *notionapi.URLProperty:
		return v.URL
	default:
		return ""
	}
}

func joinText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}

// urlValue reads a url property, falling back to its text for text-typed columns
func urlValue(p notionapi.Property) string {
	switch p.(type) {
	case *notionapi.URLProperty, *notionapi.RichTextProperty, *notionapi.TitleProperty:
		return strings.TrimSpace(plainText(p))
	default:
		return ""
	}
}

func lookup(props notionapi.Properties, candidates ...string) (notionapi.Property, bool) {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	name, ok := ResolveProperty(names, candidates...)
	if !ok {
		return nil, false
	}
	return props[name], true
}

// Record extracts a job record from a page
func Record(page notionapi.Page) types.JobRecord {
	rec := types.JobRecord{ID: string(page.ID)}

	if p, ok := lookup(page.Properties, companyNames...); ok {
		rec.Company = strings.TrimSpace(plainText(p))
	}
	if p, ok := lookup(page.Properties, roleNames...); ok {
		rec.Role = strings.TrimSpace(plainText(p))
	}
	for _, candidate := range urlNames {
		if p, ok := lookup(page.Properties, candidate); ok {
			if u := urlValue(p); u != "" {
				rec.URL = u
				break
			}
		}
	}
	if p, ok := lookup(page.Properties, descriptionNames...); ok {
		rec.JobDescription = plainText(p)
	}
	return rec
}

// field is one logical value to write back
type field struct {
	name  string
	value any
}

// updateFields lists the values of an update that should be written.
// Status and Errors are always written so a success clears a previous error.
func updateFields(u types.RecordUpdate) []field {
	fields := []field{
		{PropStatus, u.Status},
		{PropErrors, types.TruncateError(u.Error)},
	}
	optional := []field{
		{PropRunID, u.RunID},
		{PropModel, u.Model},
		{PropPromptVersion, u.PromptVersion},
		{PropResumePDF, u.ResumePDF},
		{PropResumeTeX, u.ResumeTeX},
	}
	for _, f := range optional {
		if f.value != "" {
			fields = append(fields, f)
		}
	}
	if u.FitScore != nil {
		fields = append(fields, field{PropFitScore, *u.FitScore})
	}
	if u.KeywordCoverage != nil {
		fields = append(fields, field{PropKeywordCoverage, *u.KeywordCoverage})
	}
	return fields
}

// richText builds a single text run, or an empty list that clears the property
func richText(text string) []notionapi.RichText {
	if text == "" {
		return []notionapi.RichText{}
	}
	return []notionapi.RichText{{Type: "text", Text: &notionapi.Text{Content: text}}}
}

// encode renders a value for a property of the given type. ok is false when the type
// cannot hold the value. Empty select, status and url values encode to nil: the typed
// API cannot clear them, so they are left unchanged.
func encode(propType string, value any) (notionapi.Property, bool) {
	text := ""
	switch v := value.(type) {
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil, false
	}

	switch propType {
	case TypeTitle:
		return &notionapi.TitleProperty{Type: TypeTitle, Title: richText(text)}, true
	case TypeRichText:
		return &notionapi.RichTextProperty{Type: TypeRichText, RichText: richText(text)}, true
	case TypeSelect:
		if text == "" {
			return nil, true
		}
		return &notionapi.SelectProperty{Type: TypeSelect, Select: notionapi.Option{Name: text}}, true
	case TypeStatus:
		if text == "" {
			return nil, true
		}
		return &notionapi.StatusProperty{Type: TypeStatus, Status: notionapi.Status{Name: text}}, true
	case TypeURL:
		if text == "" {
			return nil, true
		}
		return &notionapi.URLProperty{Type: TypeURL, URL: text}, true
	case TypeNumber:
		f, isNum := value.(float64)
		if !isNum {
			var err error
			if f, err = strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
				return nil, false
			}
		}
		return &notionapi.NumberProperty{Type: TypeNumber, Number: f}, true
	default:
		return nil, false
	}
}

// BuildProperties encodes an update against a database schema. Fields whose property is
// missing from the schema, or whose type cannot hold the value, are returned as skipped.
func BuildProperties(schema Schema, u types.RecordUpdate) (notionapi.Properties, []string) {
	props := notionapi.Properties{}
	var skipped []string
	for _, f := range updateFields(u) {
		prop, ok := schema.Resolve(f.name)
		if !ok {
			skipped = append(skipped, f.name)
			continue
		}
		encoded, ok := encode(prop.Type, f.value)
		if !ok {
			skipped = append(skipped, f.name)
			continue
		}
		if encoded != nil {
			props[prop.Name] = encoded
		}
	}
	return props, skipped
}
