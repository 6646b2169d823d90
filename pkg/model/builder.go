package model

import (
	"github.com/goliatone/go-enrollment/internal/model"
	pkgopenapi "github.com/goliatone/go-enrollment/pkg/openapi"
)

// Builder converts page operations into form models.
type Builder interface {
	Build(op pkgopenapi.Operation) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler       func(string) string
	optionLabeler func(string) string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithOptionLabeler overrides how enum values are turned into option labels
// when the page catalog does not provide one.
func WithOptionLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.optionLabeler = labeler
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}

	return model.New(model.Options{
		Labeler:       cfg.labeler,
		OptionLabeler: cfg.optionLabeler,
	})
}
