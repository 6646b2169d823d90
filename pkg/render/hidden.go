package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// HiddenField is an input posted with the form but never shown, such as the
// CSRF token.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden formats value as a hidden field.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken is the hidden field carrying the session form token.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields copies base and applies fields over it. Blank names are
// dropped and the last field with a given name wins.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := map[string]string{}
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders fields by name so markup is stable.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if clean == nil {
		return nil
	}
	out := make([]HiddenField, 0, len(clean))
	for _, name := range slices.Sorted(maps.Keys(clean)) {
		out = append(out, HiddenField{Name: name, Value: clean[name]})
	}
	return out
}
