package pages

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-enrollment/internal/openapi/parser"
	"github.com/goliatone/go-enrollment/pkg/model"
	pkgopenapi "github.com/goliatone/go-enrollment/pkg/openapi"
	"github.com/goliatone/go-enrollment/pkg/state"
)

//go:embed pages.yaml
var defaultPages []byte

// DefaultLocation names the embedded page catalog in errors and logs.
const DefaultLocation = "embedded:pages.yaml"

const enrollExtension = "x-enroll"

// ErrPageNotFound is returned when a flow step names an unknown page.
var ErrPageNotFound = errors.New("pages: page not found")

// Page is one wizard form together with the state action it dispatches and
// the request-layer effect run after a valid submission.
type Page struct {
	ID           string
	Form         model.FormModel
	Verb         state.Verb
	Effect       string
	RequiresAuth bool
	Critical     bool
}

// ActionType resolves the page verb against the domain of the active flow.
// Provider pages are shared by every vertical, so the domain is only known at
// request time.
func (p Page) ActionType(domain state.Domain) state.ActionType {
	return state.Type(domain, p.Verb)
}

// SubmitLabel returns the label of the submit button.
func (p Page) SubmitLabel() string {
	if label := p.Form.UIHints["submitLabel"]; label != "" {
		return label
	}
	return "Continue"
}

// Catalog holds the parsed pages keyed by id. It is immutable once loaded.
type Catalog struct {
	pages map[string]Page
}

// CatalogOption customises catalog loading.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	parser   pkgopenapi.Parser
	builder  model.Builder
	location string
}

// WithParser swaps the OpenAPI parser.
func WithParser(p pkgopenapi.Parser) CatalogOption {
	return func(cfg *catalogConfig) {
		if p != nil {
			cfg.parser = p
		}
	}
}

// WithBuilder swaps the form model builder.
func WithBuilder(b model.Builder) CatalogOption {
	return func(cfg *catalogConfig) {
		if b != nil {
			cfg.builder = b
		}
	}
}

// WithLocation sets the document location reported in errors.
func WithLocation(location string) CatalogOption {
	return func(cfg *catalogConfig) {
		if location = strings.TrimSpace(location); location != "" {
			cfg.location = location
		}
	}
}

// LoadDefaultCatalog loads the embedded page catalog.
func LoadDefaultCatalog(ctx context.Context, opts ...CatalogOption) (*Catalog, error) {
	return LoadCatalog(ctx, defaultPages, append([]CatalogOption{WithLocation(DefaultLocation)}, opts...)...)
}

// DefaultDocument returns a copy of the embedded page catalog.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultPages...)
}

// Parse extracts the page operations of raw keyed by operation id.
func Parse(ctx context.Context, raw []byte, opts ...CatalogOption) (map[string]pkgopenapi.Operation, error) {
	cfg := newCatalogConfig(opts)
	doc, err := pkgopenapi.NewDocument(cfg.location, raw)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	ops, err := cfg.parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	return ops, nil
}

// LoadCatalog parses raw and builds a form model for every operation.
func LoadCatalog(ctx context.Context, raw []byte, opts ...CatalogOption) (*Catalog, error) {
	cfg := newCatalogConfig(opts)
	ops, err := Parse(ctx, raw, opts...)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{pages: make(map[string]Page, len(ops))}
	for id, op := range ops {
		page, err := buildPage(cfg.builder, op)
		if err != nil {
			return nil, fmt.Errorf("pages: %s: %w", id, err)
		}
		catalog.pages[id] = page
	}
	return catalog, nil
}

func newCatalogConfig(opts []CatalogOption) catalogConfig {
	cfg := catalogConfig{location: "pages.yaml"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.parser == nil {
		cfg.parser = parser.New(pkgopenapi.NewParserOptions())
	}
	if cfg.builder == nil {
		cfg.builder = model.NewBuilder()
	}
	return cfg
}

func buildPage(builder model.Builder, op pkgopenapi.Operation) (Page, error) {
	form, err := builder.Build(op)
	if err != nil {
		return Page{}, err
	}

	ext := op.Extension(enrollExtension)
	verb, _ := ext["action"].(string)
	verb = strings.TrimSpace(verb)
	if verb == "" {
		return Page{}, fmt.Errorf("%s.action is required", enrollExtension)
	}
	effect, _ := ext["effect"].(string)
	requiresAuth, _ := ext["requiresAuth"].(bool)
	critical, _ := ext["critical"].(bool)

	return Page{
		ID:           op.ID,
		Form:         form,
		Verb:         state.Verb(verb),
		Effect:       strings.TrimSpace(effect),
		RequiresAuth: requiresAuth,
		Critical:     critical,
	}, nil
}

// Page returns the page registered under id.
func (c *Catalog) Page(id string) (Page, error) {
	page, ok := c.pages[id]
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return page, nil
}

// IDs lists every page id in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.pages))
	for id := range c.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Effects lists the distinct effect names referenced by the catalog.
func (c *Catalog) Effects() []string {
	seen := map[string]struct{}{}
	for _, page := range c.pages {
		if page.Effect != "" {
			seen[page.Effect] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Suggestions collects the typeahead suggestions of every field that queries
// endpoint, in catalog order without duplicates.
func (c *Catalog) Suggestions(endpoint string) []string {
	endpoint = strings.TrimSpace(endpoint)
	var out []string
	seen := map[string]struct{}{}
	for _, id := range c.IDs() {
		for _, field := range c.pages[id].Form.Fields {
			if endpoint == "" || field.UIHints["endpoint"] != endpoint {
				continue
			}
			for _, s := range field.Suggestions {
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out
}
