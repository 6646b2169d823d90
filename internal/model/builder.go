package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-enrollment/pkg/openapi"
)

const extensionNamespace = "x-formgen"

// uiHintKeys lists the x-formgen keys that flow into Field.UIHints.
var uiHintKeys = map[string]struct{}{
	"placeholder":  {},
	"helpText":     {},
	"widget":       {},
	"inputType":    {},
	"cssClass":     {},
	"hideLabel":    {},
	"autocomplete": {},
	"endpoint":     {},
	"prefix":       {},
	"suffix":       {},
	"step":         {},
	"submitLabel":  {},
}

// Builder converts page operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.OptionLabeler != nil {
		opts.OptionLabeler = options.OptionLabeler
	}
	return &Builder{opts: opts}
}

// Build transforms a page operation into a FormModel. Only flat request
// bodies are supported: every property becomes one field, arrays become
// multi-value fields over their item enum.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if op.ID == "" {
		return FormModel{}, fmt.Errorf("model builder: operation id is required")
	}
	body := op.RequestBody
	if body.Type != "" && body.Type != "object" {
		return FormModel{}, fmt.Errorf("model builder: operation %q request body must be an object, got %q", op.ID, body.Type)
	}

	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    map[string]string{},
		UIHints:     map[string]string{},
	}

	ext := extensionMap(op.Extensions)
	if title := stringValue(ext["title"]); title != "" {
		form.Title = title
	} else {
		form.Title = op.Summary
	}
	for key, value := range ext {
		switch value.(type) {
		case map[string]any, []any:
			continue
		}
		str := stringValue(value)
		if str == "" {
			continue
		}
		if _, ok := uiHintKeys[key]; ok {
			form.UIHints[key] = str
			continue
		}
		form.Metadata[key] = str
	}

	requiredSet := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		requiredSet[name] = struct{}{}
	}

	for name, schema := range body.Properties {
		_, required := requiredSet[name]
		field, err := b.fieldFromSchema(name, schema, required)
		if err != nil {
			return FormModel{}, fmt.Errorf("model builder: operation %q: %w", op.ID, err)
		}
		form.Fields = append(form.Fields, field)
	}

	sort.SliceStable(form.Fields, func(i, j int) bool {
		left, right := form.Fields[i], form.Fields[j]
		if left.Order != right.Order {
			return left.Order < right.Order
		}
		return left.Name < right.Name
	})

	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}
	if len(form.UIHints) == 0 {
		form.UIHints = nil
	}
	return form, nil
}

func (b *Builder) fieldFromSchema(name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	field := Field{
		Name:        name,
		Format:      schema.Format,
		Required:    required,
		Description: schema.Description,
		Default:     schema.Default,
	}

	switch schema.Type {
	case "string", "":
		field.Type = FieldTypeString
	case "integer":
		field.Type = FieldTypeInteger
	case "number":
		field.Type = FieldTypeNumber
	case "boolean":
		field.Type = FieldTypeBoolean
	case "array":
		if schema.Items == nil {
			return Field{}, fmt.Errorf("array field %q missing items", name)
		}
		item, err := b.fieldFromSchema(name, *schema.Items, false)
		if err != nil {
			return Field{}, err
		}
		field.Type = FieldTypeArray
		field.Items = &item
	default:
		return Field{}, fmt.Errorf("field %q has unsupported type %q", name, schema.Type)
	}

	if len(schema.Enum) > 0 {
		field.Enum = append([]any(nil), schema.Enum...)
	}
	applyValidations(&field, schema)

	ext := extensionMap(schema.Extensions)
	field.Label = stringValue(ext["label"])
	if field.Label == "" {
		field.Label = b.opts.Labeler(name)
	}
	field.VisibleWhen = stringValue(ext["visibleWhen"])
	if order, ok := intValue(ext["order"]); ok {
		field.Order = order
	}
	for key, value := range ext {
		switch key {
		case "label", "visibleWhen", "order", "options", "suggestions":
			continue
		}
		switch value.(type) {
		case map[string]any, []any:
			continue
		}
		str := stringValue(value)
		if str == "" {
			continue
		}
		if _, ok := uiHintKeys[key]; ok {
			if field.UIHints == nil {
				field.UIHints = make(map[string]string)
			}
			field.UIHints[key] = str
			continue
		}
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		field.Metadata[key] = str
	}
	field.Placeholder = field.UIHints["placeholder"]

	enum := field.Enum
	if field.Type == FieldTypeArray && field.Items != nil {
		enum = field.Items.Enum
	}
	field.Options = b.buildOptions(enum, ext["options"])
	field.Suggestions = stringList(ext["suggestions"])
	return field, nil
}

// stringList reads x-formgen lists of free text values. Suggestions are
// offered, never enforced.
func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str := stringValue(item); str != "" {
			out = append(out, str)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// buildOptions pairs enum values with labels from x-formgen.options, which may
// be either a value->label map or an ordered list of {value,label} entries.
func (b *Builder) buildOptions(enum []any, raw any) []Option {
	labels := map[string]string{}
	var ordered []Option

	switch typed := raw.(type) {
	case map[string]any:
		for key, value := range typed {
			labels[key] = stringValue(value)
		}
	case []any:
		for _, entry := range typed {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			value := stringValue(item["value"])
			if value == "" {
				continue
			}
			label := stringValue(item["label"])
			if label == "" {
				label = b.opts.OptionLabeler(value)
			}
			ordered = append(ordered, Option{Value: value, Label: label})
		}
	}

	if len(enum) == 0 {
		return ordered
	}

	options := make([]Option, 0, len(enum))
	for _, value := range enum {
		key := stringValue(value)
		if key == "" {
			continue
		}
		label := labels[key]
		if label == "" {
			for _, opt := range ordered {
				if opt.Value == key {
					label = opt.Label
					break
				}
			}
		}
		if label == "" {
			label = b.opts.OptionLabeler(key)
		}
		options = append(options, Option{Value: key, Label: label})
	}
	return options
}

func applyValidations(field *Field, schema pkgopenapi.Schema) {
	addNumber := func(kind string, value *float64) {
		if value == nil {
			return
		}
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   kind,
			Params: map[string]string{"value": strconv.FormatFloat(*value, 'f', -1, 64)},
		})
	}
	addInt := func(kind string, value *int) {
		if value == nil {
			return
		}
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   kind,
			Params: map[string]string{"value": strconv.Itoa(*value)},
		})
	}

	addNumber(ValidationRuleMin, schema.Minimum)
	addNumber(ValidationRuleMax, schema.Maximum)
	addInt(ValidationRuleMinLength, schema.MinLength)
	addInt(ValidationRuleMaxLength, schema.MaxLength)
	addInt(ValidationRuleMinItems, schema.MinItems)
	addInt(ValidationRuleMaxItems, schema.MaxItems)
	if schema.Pattern != "" {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
}

func extensionMap(extensions map[string]any) map[string]any {
	if extensions == nil {
		return nil
	}
	mapped, _ := extensions[extensionNamespace].(map[string]any)
	return mapped
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}
