package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/fields"
	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/render"
)

// suggestionLimit caps the typeahead suggestions listed in a prompt's help.
const suggestionLimit = 10

// Renderer implements render.Renderer for terminal sessions. Rendering a page
// asks one prompt per visible field and returns the answers in the same shape
// a browser would post.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	optionSource OptionSource
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for the page and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(values)
}

// Collect prompts for every visible field of form. Stored values prefill the
// prompts and answers are validated the same way a posted form is, so an
// invalid answer is asked again.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (url.Values, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.header(ctx, form, opts); err != nil {
		return nil, err
	}

	out := url.Values{}
	for _, field := range form.Fields {
		if opts.IsHidden(field.Name) {
			continue
		}
		raw, err := r.promptField(ctx, field, opts.Values[field.Name], opts.Errors[field.Name])
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			out[field.Name] = raw
		}
	}
	return out, nil
}

func (r *Renderer) header(ctx context.Context, form model.FormModel, opts render.RenderOptions) error {
	page := opts.Page
	title := page.Title
	if title == "" {
		title = form.Title
	}
	if page.Total > 0 {
		title = fmt.Sprintf("[%d/%d] %s", page.Position, page.Total, title)
	}
	if title != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+title); err != nil {
			return err
		}
	}
	for _, msg := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, current any, errs []string) ([]string, error) {
	label := displayLabel(field)
	for _, msg := range errs {
		_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, label, msg))
	}
	for {
		raw, err := r.ask(ctx, field, current)
		if err != nil {
			return nil, err
		}
		_, msgs := fields.Validate(field, raw)
		if len(msgs) == 0 {
			return raw, nil
		}
		for _, msg := range msgs {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, label, msg))
		}
	}
}

func (r *Renderer) ask(ctx context.Context, field model.Field, current any) ([]string, error) {
	label := displayLabel(field)
	help := displayHelp(field)

	switch field.Widget() {
	case "checkbox":
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: fields.Display(field, current) == "true",
			Help:    help,
		})
		if err != nil || !checked {
			return nil, err
		}
		return []string{"true"}, nil

	case "checkboxes":
		labels, values := optionLists(field)
		var defaults []int
		for idx, value := range values {
			if fields.Selected(current, value) {
				defaults = append(defaults, idx)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  labels,
			Defaults: defaults,
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		return valuesFromIndices(values, indices), nil

	case "radio", "select":
		labels, values := optionLists(field)
		defaultIdx := -1
		for idx, value := range values {
			if fields.Selected(current, value) {
				defaultIdx = idx
				break
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return nil, nil
		}
		return []string{values[idx]}, nil

	case "textarea":
		text, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: fields.Display(field, current),
			Help:    help,
		})
		return single(text), err

	case "typeahead":
		if suggestions := r.suggestions(ctx, field); suggestions != "" {
			help = strings.TrimSpace(help + "\nSuggestions: " + suggestions)
		}
	}

	cfg := InputConfig{
		Message: label,
		Default: fields.Display(field, current),
		Help:    help,
	}
	if field.Format == fields.FormatKindPassword {
		text, err := r.driver.Password(ctx, cfg)
		return single(text), err
	}
	text, err := r.driver.Input(ctx, cfg)
	return single(text), err
}

func (r *Renderer) suggestions(ctx context.Context, field model.Field) string {
	endpoint := field.UIHints["endpoint"]
	if r.optionSource == nil || endpoint == "" {
		return ""
	}
	options, err := r.optionSource(ctx, endpoint, "")
	if err != nil {
		return ""
	}
	labels := make([]string, 0, suggestionLimit)
	for _, option := range options {
		if len(labels) == suggestionLimit {
			break
		}
		labels = append(labels, option.Label)
	}
	return strings.Join(labels, ", ")
}

func (r *Renderer) serialize(values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(map[string][]string(values))
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if h := field.UIHints["helpText"]; h != "" {
		return h
	}
	return field.Description
}

func optionLists(field model.Field) (labels, values []string) {
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		labels = append(labels, label)
		values = append(values, option.Value)
	}
	return labels, values
}

func valuesFromIndices(values []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(values) {
			out = append(out, values[idx])
		}
	}
	return out
}

func single(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return []string{value}
}

func prettyPrint(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, strings.Join(values[key], ","))
	}
	return b.String()
}
