package fields

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// Display formats a stored value for prefilling field's input.
func Display(field model.Field, value any) string {
	if value == nil {
		return ""
	}

	switch field.Format {
	case FormatKindPhone:
		if s, ok := value.(string); ok {
			return FormatPhone(s)
		}
	case FormatKindDate:
		switch v := value.(type) {
		case time.Time:
			return FormatDate(v)
		case string:
			if t, err := ParseDate(v); err == nil {
				return FormatDate(t)
			}
			return v
		}
	case FormatKindPassword:
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		if v == 0 && !field.Required {
			return ""
		}
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ",")
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(value)
}

// Selected reports whether option is among the stored values of a list or
// single choice field.
func Selected(value any, option string) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v == option
	case []string:
		for _, s := range v {
			if s == option {
				return true
			}
		}
		return false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if fmt.Sprint(rv.Index(i).Interface()) == option {
				return true
			}
		}
		return false
	}
	return fmt.Sprint(value) == option
}
