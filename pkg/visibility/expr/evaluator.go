package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-enrollment/pkg/visibility"
)

// Evaluator evaluates visibility rules written in a small expression language:
//
//   - truthiness: `hasTransportation`, `!cprTrained`
//   - equality: `careDate == "RIGHT_NOW"`, `vertical != CHILD_CARE`
//   - ordering: `numberOfChildren >= 2`
//   - membership: `vertical in ["CHILD_CARE", "TUTORING"]`
//   - composition with `&&`, `||` and parentheses
//
// Identifiers resolve against Context.Values (dotted paths allowed) or
// Context.Extras through the `extras.` prefix. When the resolved value is a
// list, `==` holds if any element matches. Parsed rules are cached.
type Evaluator struct {
	cache sync.Map
}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval parses (or reuses) the rule and evaluates it. Empty rules hold.
func (e *Evaluator) Eval(subject, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	n, err := e.compile(rule)
	if err != nil {
		return false, fmt.Errorf("%s: %w", subject, err)
	}
	return n.eval(scope(ctx))
}

// Compile reports whether rule is well formed without evaluating it.
func (e *Evaluator) Compile(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(node), nil
	}
	tokens, err := tokenize(rule)
	if err != nil {
		return nil, err
	}
	n, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	e.cache.Store(rule, n)
	return n, nil
}

type scope visibility.Context

func (s scope) lookup(path string) (any, bool) {
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		return lookupPath(s.Extras, rest)
	}
	return lookupPath(s.Values, path)
}

func lookupPath(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func (n orNode) eval(s scope) (bool, error) {
	ok, err := n.left.eval(s)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(s)
}

func (n andNode) eval(s scope) (bool, error) {
	ok, err := n.left.eval(s)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(s)
}

func (n notNode) eval(s scope) (bool, error) {
	ok, err := n.inner.eval(s)
	return !ok, err
}

func (n truthyNode) eval(s scope) (bool, error) {
	value, ok := s.lookup(n.path)
	return ok && truthy(value), nil
}

func (n inNode) eval(s scope) (bool, error) {
	value, _ := s.lookup(n.path)
	for _, lit := range n.set {
		if matches(value, lit) {
			return true, nil
		}
	}
	return false, nil
}

func (n compareNode) eval(s scope) (bool, error) {
	value, _ := s.lookup(n.path)
	switch n.op {
	case tokenEq:
		return matches(value, n.lit), nil
	case tokenNeq:
		return !matches(value, n.lit), nil
	}

	got, ok := toNumber(value)
	if !ok {
		return false, nil
	}
	want := n.lit.number
	switch n.op {
	case tokenLt:
		return got < want, nil
	case tokenLte:
		return got <= want, nil
	case tokenGt:
		return got > want, nil
	case tokenGte:
		return got >= want, nil
	}
	return false, fmt.Errorf("expr: unsupported operator on %q", n.path)
}

// matches compares a value against a literal. Lists match when any element
// does, which lets multi-select fields be tested with ==.
func matches(value any, lit literal) bool {
	if items, ok := asList(value); ok {
		if lit.kind == litNull {
			return len(items) == 0
		}
		for _, item := range items {
			if matches(item, lit) {
				return true
			}
		}
		return false
	}

	switch lit.kind {
	case litNull:
		return value == nil || value == ""
	case litBool:
		return toBool(value) == (lit.text == "true")
	case litNumber:
		got, ok := toNumber(value)
		return ok && got == lit.number
	default:
		return toString(value) == lit.text
	}
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func truthy(value any) bool {
	if items, ok := asList(value); ok {
		return len(items) > 0
	}
	switch v := value.(type) {
	case nil:
		return false
	case map[string]any:
		return len(v) > 0
	}
	return toBool(value)
}

func toBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return strings.TrimSpace(v) != ""
	}
	if n, ok := toNumber(value); ok {
		return n != 0
	}
	return true
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(value)
}
