package fields

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// Format kinds understood by Validate and Display.
const (
	FormatKindPhone    = "phone"
	FormatKindDate     = "date"
	FormatKindZip      = "zip"
	FormatKindEmail    = "email"
	FormatKindName     = "name"
	FormatKindPassword = "password"
	FormatKindTextarea = "textarea"
	FormatKindCurrency = "currency"
)

// defaultTextLimit caps free text that carries no maxLength rule.
const defaultTextLimit = 2000

// Now is the clock used for age checks.
var Now = time.Now

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// Validate normalises the submitted values of one field. It returns the typed
// value to store (string, int, float64, bool or []string) together with any
// validation messages. An empty optional field yields a nil value and no
// messages.
func Validate(field model.Field, raw []string) (any, []string) {
	if field.Type == model.FieldTypeArray {
		return validateList(field, raw)
	}

	value := ""
	if len(raw) > 0 {
		value = strings.TrimSpace(raw[0])
	}

	if field.Type == model.FieldTypeBoolean {
		checked := isChecked(value)
		if field.Required && !checked {
			return false, []string{requiredMessage(field)}
		}
		return checked, nil
	}

	if value == "" {
		if field.Required {
			return nil, []string{requiredMessage(field)}
		}
		return nil, nil
	}

	switch field.Type {
	case model.FieldTypeInteger:
		return validateInteger(field, value)
	case model.FieldTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
		if err != nil {
			return nil, []string{"Enter a number."}
		}
		return n, checkBounds(field, n)
	default:
		return validateString(field, value)
	}
}

func validateInteger(field model.Field, value string) (any, []string) {
	var (
		n   int
		err error
	)
	if field.Format == FormatKindCurrency {
		n, err = ParseDollars(value)
	} else {
		n, err = strconv.Atoi(value)
	}
	if err != nil {
		return nil, []string{"Enter a whole number."}
	}
	if msgs := checkEnum(field, strconv.Itoa(n)); len(msgs) > 0 {
		return nil, msgs
	}
	return n, checkBounds(field, float64(n))
}

func validateString(field model.Field, value string) (any, []string) {
	var msgs []string

	switch field.Format {
	case FormatKindPhone:
		digits, err := NormalizePhone(value)
		if err != nil {
			return nil, []string{"Enter a valid 10-digit phone number."}
		}
		return digits, nil
	case FormatKindDate:
		t, err := ParseDate(value)
		if err != nil {
			return nil, []string{"Enter a date as MM/DD/YYYY."}
		}
		if min, ok := metadataInt(field, "minAge"); ok {
			switch ValidateAge(t, Now(), min) {
			case nil:
			case ErrTooYoung:
				return nil, []string{fmt.Sprintf("You must be at least %d years old.", min)}
			default:
				return nil, []string{"Enter a date in the past."}
			}
		}
		return t.Format(ISODateLayout), nil
	case FormatKindZip:
		zip, err := NormalizeZip(value)
		if err != nil {
			return nil, []string{"Enter a valid 5-digit zip code."}
		}
		return zip, nil
	case FormatKindEmail:
		email, err := NormalizeEmail(value)
		if err != nil {
			return nil, []string{"Enter a valid email address."}
		}
		return email, nil
	case FormatKindName:
		name, err := CleanName(value)
		if err != nil {
			return nil, []string{fmt.Sprintf("Enter a name up to %d characters.", MaxNameLength)}
		}
		return name, nil
	case FormatKindPassword:
	default:
		limit := defaultTextLimit
		if max, ok := ruleInt(field, model.ValidationRuleMaxLength); ok {
			limit = max
		}
		value = CleanText(value, limit)
		if value == "" {
			if field.Required {
				return nil, []string{requiredMessage(field)}
			}
			return nil, nil
		}
	}

	if enumMsgs := checkEnum(field, value); len(enumMsgs) > 0 {
		return nil, enumMsgs
	}

	length := utf8.RuneCountInString(value)
	if min, ok := ruleInt(field, model.ValidationRuleMinLength); ok && length < min {
		msgs = append(msgs, fmt.Sprintf("Use at least %d characters.", min))
	}
	if max, ok := ruleInt(field, model.ValidationRuleMaxLength); ok && length > max {
		msgs = append(msgs, fmt.Sprintf("Use at most %d characters.", max))
	}
	if rule, ok := field.Rule(model.ValidationRulePattern); ok {
		re, err := compilePattern(rule.Params["pattern"])
		if err == nil && !re.MatchString(value) {
			msgs = append(msgs, "Enter a value in the expected format.")
		}
	}
	if len(msgs) > 0 {
		return nil, msgs
	}
	return value, nil
}

func validateList(field model.Field, raw []string) (any, []string) {
	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		// Typeahead inputs submit a single comma separated value.
		for _, part := range strings.Split(entry, ",") {
			part = StripMarkup(strings.TrimSpace(part))
			if part != "" && !slices.Contains(values, part) {
				values = append(values, part)
			}
		}
	}

	if len(values) == 0 {
		if field.Required {
			return nil, []string{"Choose at least one option."}
		}
		return []string{}, nil
	}

	if field.Items != nil && len(field.Items.Options) > 0 {
		for _, v := range values {
			if !hasOption(field.Items.Options, v) {
				return nil, []string{fmt.Sprintf("%q is not an available choice.", v)}
			}
		}
	}

	if min, ok := ruleInt(field, model.ValidationRuleMinItems); ok && len(values) < min {
		return nil, []string{fmt.Sprintf("Choose at least %d options.", min)}
	}
	if max, ok := ruleInt(field, model.ValidationRuleMaxItems); ok && len(values) > max {
		return nil, []string{fmt.Sprintf("Choose at most %d options.", max)}
	}
	return values, nil
}

func checkBounds(field model.Field, n float64) []string {
	var msgs []string
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		if min, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil && n < min {
			msgs = append(msgs, fmt.Sprintf("Enter %s or more.", rule.Params["value"]))
		}
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		if max, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil && n > max {
			msgs = append(msgs, fmt.Sprintf("Enter %s or less.", rule.Params["value"]))
		}
	}
	return msgs
}

func checkEnum(field model.Field, value string) []string {
	if len(field.Options) == 0 || hasOption(field.Options, value) {
		return nil
	}
	return []string{"Choose one of the available options."}
}

func hasOption(options []model.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func isChecked(value string) bool {
	switch strings.ToLower(value) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func requiredMessage(field model.Field) string {
	if field.Type == model.FieldTypeBoolean {
		return "Please confirm to continue."
	}
	return "This field is required."
}

func ruleInt(field model.Field, kind string) (int, bool) {
	rule, ok := field.Rule(kind)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rule.Params["value"])
	return n, err == nil
}

func metadataInt(field model.Field, key string) (int, bool) {
	raw, ok := field.Metadata[key]
	if !ok {
		raw, ok = field.UIHints[key]
	}
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache[pattern] = re
	return re, nil
}
