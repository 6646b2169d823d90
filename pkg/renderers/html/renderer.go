package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/render"
	rendertemplate "github.com/goliatone/go-enrollment/pkg/render/template"
	"github.com/goliatone/go-enrollment/pkg/render/template/gotemplate"
	"github.com/goliatone/go-enrollment/pkg/renderers/html/components"
)

// DefaultAssetsURL is where AssetsFS is expected to be served.
const DefaultAssetsURL = "/assets"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	assetsURL        string
	stylesheets      []string
	defaultStyles    bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithAssetsURL sets the prefix for the bundled stylesheet and relative
// component scripts.
func WithAssetsURL(url string) Option {
	return func(cfg *config) {
		cfg.assetsURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// WithStylesheet links an extra stylesheet after the bundled one.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithoutDefaultStyles drops the bundled stylesheet link.
func WithoutDefaultStyles() Option {
	return func(cfg *config) {
		cfg.defaultStyles = false
	}
}

// Renderer renders a wizard page as a complete HTML document.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	assetsURL   string
	stylesheets []string
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:    TemplatesFS(),
		assetsURL:     DefaultAssetsURL,
		defaultStyles: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	var stylesheets []string
	if cfg.defaultStyles {
		stylesheets = append(stylesheets, cfg.assetsURL+"/"+StylesheetName)
	}
	stylesheets = append(stylesheets, cfg.stylesheets...)

	return &Renderer{
		templates:   renderer,
		registry:    cfg.registry,
		assetsURL:   cfg.assetsURL,
		stylesheets: stylesheets,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders every visible field of form inside the page layout.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	fields := newComponentRenderer(r.templates, r.registry)
	markup := make([]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		if options.IsHidden(field.Name) {
			continue
		}
		rendered, err := fields.render(field, options.Values[field.Name], options.Errors[field.Name])
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		markup = append(markup, rendered)
	}

	page := options.Page
	if page.Title == "" {
		page.Title = form.Title
	}
	if page.Description == "" {
		page.Description = form.Description
	}
	if page.SubmitLabel == "" {
		page.SubmitLabel = "Continue"
	}

	styles, scripts := fields.assets()
	result, err := r.templates.RenderTemplate(PageTemplate, map[string]any{
		"page":         pageData(page),
		"progress":     page.Progress(),
		"fields":       markup,
		"formErrors":   render.MergeFormErrors(options.FormErrors),
		"hiddenFields": hiddenFieldData(options.HiddenFields),
		"stylesheets":  append(append([]string(nil), r.stylesheets...), styles...),
		"scripts":      r.scriptData(scripts),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// ErrorPage describes a standalone error document.
type ErrorPage struct {
	Status  int
	Title   string
	Message string
	HomeURL string
}

// RenderError renders page with the bundled stylesheets and no form.
func (r *Renderer) RenderError(page ErrorPage) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if page.Title == "" {
		page.Title = "Something went wrong"
	}
	result, err := r.templates.RenderTemplate(ErrorTemplate, map[string]any{
		"status":      page.Status,
		"title":       page.Title,
		"message":     page.Message,
		"homeURL":     page.HomeURL,
		"stylesheets": append([]string(nil), r.stylesheets...),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render error template: %w", err)
	}
	return []byte(result), nil
}

// pageData spells out the page context so counters stay integers in the
// template instead of round-tripping through JSON numbers.
func pageData(page render.PageContext) map[string]any {
	return map[string]any{
		"Flow":        page.Flow,
		"FlowTitle":   page.FlowTitle,
		"Step":        page.Step,
		"Title":       page.Title,
		"Description": page.Description,
		"Position":    page.Position,
		"Total":       page.Total,
		"ActionURL":   page.ActionURL,
		"BackURL":     page.BackURL,
		"SubmitLabel": page.SubmitLabel,
	}
}

func hiddenFieldData(fields map[string]string) []any {
	sorted := render.SortedHiddenFields(fields)
	out := make([]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func (r *Renderer) scriptData(scripts []components.Script) []any {
	out := make([]any, 0, len(scripts))
	for _, script := range scripts {
		if script.Src == "" {
			continue
		}
		out = append(out, map[string]any{
			"src":    r.resolveAsset(script.Src),
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	return out
}

func (r *Renderer) resolveAsset(src string) string {
	if strings.HasPrefix(src, "/") || strings.Contains(src, "://") {
		return src
	}
	return r.assetsURL + "/" + src
}
