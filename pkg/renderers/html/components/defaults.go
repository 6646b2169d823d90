package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/fields"
	"github.com/goliatone/go-enrollment/pkg/model"
)

const templatePrefix = "templates/components/"

// TypeaheadScript is the asset the typeahead component loads. Relative
// sources are resolved against the renderer's asset URL.
const TypeaheadScript = "typeahead.js"

// NewDefaultRegistry constructs a registry holding every widget used by the
// page catalog.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "input.tmpl"),
	})
	registry.MustRegister(NamePhone, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "phone.tmpl"),
	})
	registry.MustRegister(NameDate, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "date.tmpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "select.tmpl"),
	})
	registry.MustRegister(NameRadio, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "radio.tmpl"),
		Grouped:  true,
	})
	registry.MustRegister(NameCheckbox, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "checkbox.tmpl"),
		Grouped:  true,
	})
	registry.MustRegister(NameCheckboxes, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "checkboxes.tmpl"),
		Grouped:  true,
	})
	registry.MustRegister(NameTextarea, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "textarea.tmpl"),
	})
	registry.MustRegister(NameRange, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "range.tmpl"),
	})
	registry.MustRegister(NameTypeahead, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "typeahead.tmpl"),
		Scripts:  []Script{{Src: TypeaheadScript, Defer: true}},
	})

	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		rendered, err := data.Template.RenderTemplate(templateName, ControlData(field, data))
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// ControlData flattens field and its current value into the context the
// component templates read.
func ControlData(field model.Field, data ComponentData) map[string]any {
	invalid := len(data.Errors) > 0
	payload := map[string]any{
		"id":           ControlID(field.Name),
		"name":         field.Name,
		"label":        field.Label,
		"required":     field.Required,
		"placeholder":  field.Placeholder,
		"value":        fields.Display(field, data.Value),
		"invalid":      invalid,
		"describedBy":  DescribedBy(field, invalid),
		"hideLabel":    strings.TrimSpace(field.UIHints["hideLabel"]) == "true",
		"inputType":    inputType(field),
		"autocomplete": field.UIHints["autocomplete"],
		"prefix":       field.UIHints["prefix"],
		"suffix":       field.UIHints["suffix"],
		"step":         field.UIHints["step"],
		"currency":     field.Format == fields.FormatKindCurrency,
		"endpoint":     field.UIHints["endpoint"],
		"options":      optionData(field, data.Value),
		"config":       data.Config,
	}
	for key, kind := range map[string]string{
		"min":       model.ValidationRuleMin,
		"max":       model.ValidationRuleMax,
		"maxLength": model.ValidationRuleMaxLength,
		"pattern":   model.ValidationRulePattern,
	} {
		if rule, ok := field.Rule(kind); ok {
			if kind == model.ValidationRulePattern {
				payload[key] = rule.Params["pattern"]
				continue
			}
			payload[key] = rule.Params["value"]
		}
	}
	return payload
}

func optionData(field model.Field, value any) []map[string]any {
	if len(field.Options) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(field.Options))
	for idx, option := range field.Options {
		out = append(out, map[string]any{
			"id":      fmt.Sprintf("%s-%d", ControlID(field.Name), idx),
			"value":   option.Value,
			"label":   option.Label,
			"checked": fields.Selected(value, option.Value),
		})
	}
	return out
}

func inputType(field model.Field) string {
	if hint := strings.TrimSpace(field.UIHints["inputType"]); hint != "" {
		return hint
	}
	switch field.Format {
	case fields.FormatKindEmail:
		return "email"
	case fields.FormatKindPassword:
		return "password"
	case fields.FormatKindPhone:
		return "tel"
	}
	switch field.Type {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return "number"
	}
	return "text"
}

// ControlID returns the DOM id of the control for the named field.
func ControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "fg-" + trimmed
}

// ErrorID returns the DOM id of the error list of the named field.
func ErrorID(name string) string {
	if id := ControlID(name); id != "" {
		return id + "-error"
	}
	return ""
}

// HelpID returns the DOM id of the help text of the named field.
func HelpID(name string) string {
	if id := ControlID(name); id != "" {
		return id + "-help"
	}
	return ""
}

// DescribedBy lists the ids an aria-describedby attribute should reference.
func DescribedBy(field model.Field, invalid bool) string {
	var ids []string
	if strings.TrimSpace(field.UIHints["helpText"]) != "" {
		ids = append(ids, HelpID(field.Name))
	}
	if invalid {
		ids = append(ids, ErrorID(field.Name))
	}
	return strings.Join(ids, " ")
}
