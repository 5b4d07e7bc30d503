// Package render turns configuration templates into file names, paths and
// package descriptors.
//
// Templates use Go text/template syntax with the sprig function library and
// two extra helpers: pad3, which zero-pads a non-negative integer to three
// digits, and toYaml. Every Render call parses a fresh template so no state
// is shared between calls. Referencing an undefined key is an error.
package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateError reports a template that failed to parse or execute.
type TemplateError struct {
	// Name identifies the template, e.g. "defaultPackageSpec.pathTemplate".
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("rendering template %q: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Renderer renders templates with a fixed function map.
type Renderer struct {
	funcs template.FuncMap
}

// New creates a Renderer with the sprig functions, pad3 and toYaml.
func New() *Renderer {
	funcs := sprig.TxtFuncMap()
	for name, fn := range extraFuncs() {
		funcs[name] = fn
	}

	return &Renderer{funcs: funcs}
}

// Render parses text as the template name and executes it against data.
func (r *Renderer) Render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).
		Funcs(r.funcs).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &TemplateError{Name: name, Err: err}
	}

	return buf.String(), nil
}
