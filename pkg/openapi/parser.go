package openapi

import "context"

// Parser normalises OpenAPI documents into operation wrappers keyed by
// operationId.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// ParserOptions exposes parser toggles.
type ParserOptions struct {
	// Validate runs kin-openapi document validation before extraction.
	Validate bool

	// AllowEmpty accepts documents without any operations.
	AllowEmpty bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// WithAllowEmpty toggles acceptance of documents without operations.
func WithAllowEmpty(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmpty = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration. Validation is on by default.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
