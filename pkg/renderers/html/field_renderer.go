package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"slices"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/model"
	rendertemplate "github.com/goliatone/go-enrollment/pkg/render/template"
	"github.com/goliatone/go-enrollment/pkg/renderers/html/components"
)

// componentConfigMetadataKey holds optional JSON passed to the component as
// ComponentData.Config.
const componentConfigMetadataKey = "componentConfig"

type componentRenderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates rendertemplate.TemplateRenderer, registry *components.Registry) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field model.Field, value any, errs []string) (string, error) {
	componentName := field.Widget()
	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Name)
	}

	config, err := parseComponentConfig(field.Metadata[componentConfigMetadataKey])
	if err != nil {
		return "", fmt.Errorf("parse component config for field %q: %w", field.Name, err)
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, components.ComponentData{
		Template: r.templates,
		Value:    value,
		Errors:   errs,
		Config:   config,
	}); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Name, err)
	}

	r.usedComponents[descriptor.Name] = struct{}{}
	return buildFieldMarkup(field, descriptor, control.String(), errs), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func buildFieldMarkup(field model.Field, descriptor components.Descriptor, control string, errs []string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="enroll-field`)
	if cls := strings.TrimSpace(field.UIHints["cssClass"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(stdhtml.EscapeString(cls))
	}
	if len(errs) > 0 {
		builder.WriteString(` enroll-field-invalid`)
	}
	builder.WriteString(`" data-component="`)
	builder.WriteString(stdhtml.EscapeString(descriptor.Name))
	builder.WriteString(`"`)
	if rule := strings.TrimSpace(field.VisibleWhen); rule != "" {
		builder.WriteString(` data-visible-when="`)
		builder.WriteString(stdhtml.EscapeString(rule))
		builder.WriteString(`"`)
	}
	builder.WriteString(">\n")

	if shouldRenderLabel(field, descriptor) {
		builder.WriteString(`  <label for="`)
		builder.WriteString(stdhtml.EscapeString(components.ControlID(field.Name)))
		builder.WriteString(`" class="enroll-label">`)
		builder.WriteString(stdhtml.EscapeString(field.Label))
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if hint := strings.TrimSpace(field.UIHints["helpText"]); hint != "" {
		builder.WriteString(`  <p id="`)
		builder.WriteString(stdhtml.EscapeString(components.HelpID(field.Name)))
		builder.WriteString(`" class="enroll-help">`)
		builder.WriteString(stdhtml.EscapeString(hint))
		builder.WriteString("</p>\n")
	}

	if len(errs) > 0 {
		builder.WriteString(`  <ul id="`)
		builder.WriteString(stdhtml.EscapeString(components.ErrorID(field.Name)))
		builder.WriteString(`" class="enroll-field-errors" role="alert">`)
		for _, msg := range errs {
			builder.WriteString("<li>")
			builder.WriteString(stdhtml.EscapeString(msg))
			builder.WriteString("</li>")
		}
		builder.WriteString("</ul>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func shouldRenderLabel(field model.Field, descriptor components.Descriptor) bool {
	if descriptor.Grouped || strings.TrimSpace(field.Label) == "" {
		return false
	}
	return strings.TrimSpace(field.UIHints["hideLabel"]) != "true"
}

func parseComponentConfig(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
