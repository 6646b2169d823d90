package graphql

import (
	"context"
	"encoding/json"
	"fmt"
)

// Query runs a query document and decodes its root field into T.
func Query[T any](ctx context.Context, exec Executor, name string, vars map[string]any) (T, error) {
	return run[T](ctx, exec, KindQuery, name, vars)
}

// Mutate runs a mutation document and decodes its root field into T.
func Mutate[T any](ctx context.Context, exec Executor, name string, vars map[string]any) (T, error) {
	return run[T](ctx, exec, KindMutation, name, vars)
}

// Input wraps a typed input value as the conventional `input` variable.
func Input(value any) map[string]any {
	return map[string]any{"input": value}
}

func run[T any](ctx context.Context, exec Executor, kind OperationKind, name string, vars map[string]any) (T, error) {
	var zero T
	if exec == nil {
		return zero, fmt.Errorf("graphql: executor is nil")
	}
	doc, err := Lookup(name)
	if err != nil {
		return zero, err
	}
	if doc.Kind != kind {
		return zero, fmt.Errorf("graphql: %s is a %s, not a %s", name, doc.Kind, kind)
	}

	resp, err := exec.Execute(ctx, Request{Name: name, Variables: vars})
	if err != nil {
		return zero, err
	}

	field := resp.Data.Get(doc.Field)
	if !field.Exists() {
		return zero, fmt.Errorf("%w: missing %s", ErrNoData, doc.Field)
	}

	var out T
	if err := json.Unmarshal([]byte(field.Raw), &out); err != nil {
		return zero, fmt.Errorf("graphql: decode %s: %w", doc.Field, err)
	}
	return out, nil
}
