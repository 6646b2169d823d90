package visibility

import (
	"fmt"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// Evaluator decides whether a rule holds for the given context. The subject is
// the field name or step id the rule belongs to and is only used in errors.
type Evaluator interface {
	Eval(subject, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values usually holds the flattened
// state of the current domain merged with the submitted form, while Extras
// carries request scoped facts such as whether the user is authenticated.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(subject, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(subject, rule string, ctx Context) (bool, error) {
	return fn(subject, rule, ctx)
}

// Always is an Evaluator that treats every rule as satisfied.
var Always = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })

// Hidden returns the set of field names whose VisibleWhen rule evaluates to
// false. Fields without a rule are always visible.
func Hidden(eval Evaluator, fields []model.Field, ctx Context) (map[string]bool, error) {
	if eval == nil {
		return nil, nil
	}
	hidden := map[string]bool{}
	for _, field := range fields {
		if field.VisibleWhen == "" {
			continue
		}
		ok, err := eval.Eval(field.Name, field.VisibleWhen, ctx)
		if err != nil {
			return nil, fmt.Errorf("visibility: field %q: %w", field.Name, err)
		}
		if !ok {
			hidden[field.Name] = true
		}
	}
	return hidden, nil
}
