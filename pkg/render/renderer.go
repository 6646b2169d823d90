package render

import (
	"context"

	"github.com/goliatone/go-enrollment/pkg/model"
)

// Renderer converts a page FormModel into a byte representation (an HTML
// page, a terminal prompt transcript).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
