package prompt

import (
	"fmt"
	"maps"

	pongo2 "github.com/flosch/pongo2/v6"

	"github.com/jawat-my/saferoute/utils"
)

func init() {
	// Rendered prompts are plain text for LLM consumption, never HTML.
	pongo2.SetAutoescape(false)
}

// Templater provides template rendering with Jinja2-style (pongo2) syntax
// for prompt assembly.
type Templater struct{}

// NewTemplater creates a new Templater.
func NewTemplater() *Templater {
	return &Templater{}
}

// Render renders a template string with the provided data using pongo2.
func (t *Templater) Render(tmpl string, data map[string]any) (string, error) {
	if data == nil {
		return "", fmt.Errorf("template data is nil")
	}
	ctx := flattenContext(data)
	utils.Debug("Templater.Render: tmpl = %q, context keys = %v", tmpl, contextKeys(ctx))
	pl, err := pongo2.FromString(tmpl)
	if err != nil {
		return "", err
	}
	out, err := pl.Execute(ctx)
	if err != nil {
		return "", err
	}
	return out, nil
}

// RegisterFilters allows registering custom pongo2 filters.
func (t *Templater) RegisterFilters(filters map[string]pongo2.FilterFunction) {
	for name, fn := range filters {
		_ = pongo2.RegisterFilter(name, fn)
	}
}

// Render applies templating to the given string with the provided data.
func Render(tmpl string, data map[string]any) (string, error) {
	return NewTemplater().Render(tmpl, data)
}

// flattenContext converts the map for pongo2 compatibility.
func flattenContext(data map[string]any) pongo2.Context {
	converted := make(pongo2.Context, len(data))
	maps.Copy(converted, data)
	return converted
}

// contextKeys returns the keys of a pongo2.Context as a []string.
func contextKeys(ctx pongo2.Context) []string {
	var out []string
	for k := range ctx {
		out = append(out, k)
	}
	return out
}
