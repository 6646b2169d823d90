package tui

import (
	"context"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the collected values as a JSON object of string
	// lists, the shape of url.Values.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes the renderer puts in front of messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// OptionSource suggests values for typeahead fields. endpoint is the field's
// endpoint hint.
type OptionSource func(ctx context.Context, endpoint, query string) ([]model.Option, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithOptionSource lists suggestions in the help of typeahead prompts. When
// omitted the renderer stays offline.
func WithOptionSource(source OptionSource) Option {
	return func(r *Renderer) {
		r.optionSource = source
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
