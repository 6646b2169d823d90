// Package gotemplate implements template.TemplateRenderer with pongo2 and
// registers the display filters the page templates use.
package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-enrollment/pkg/fields"
	"github.com/goliatone/go-enrollment/pkg/render/template"
)

type Option func(*config)

type config struct {
	templates fs.FS
	extension string
}

// WithFS sets the template bundle. It is required.
func WithFS(files fs.FS) Option {
	return func(cfg *config) { cfg.templates = files }
}

// WithExtension sets the suffix appended to template names (default ".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.extension = "." + strings.TrimPrefix(ext, ".")
		}
	}
}

// Engine renders named templates from an fs.FS. Parsed templates are cached.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
	ext   string
}

var _ template.TemplateRenderer = (*Engine)(nil)

func New(options ...Option) (*Engine, error) {
	cfg := config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: template fs is required")
	}
	if err := registerFilters(); err != nil {
		return nil, err
	}
	return &Engine{
		set:   pongo2.NewSet("enrollment", pongo2.NewFSLoader(cfg.templates)),
		cache: map[string]*pongo2.Template{},
		ext:   cfg.extension,
	}, nil
}

// Render treats name as inline template source when it contains template
// tags and as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.load(path)
	if err != nil {
		return "", err
	}
	return e.execute(path, tmpl, data, out)
}

func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute("inline", tmpl, data, out)
}

// RegisterFilter adds a global pongo2 filter. Names are process wide, so an
// existing name is an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var p any
		if param != nil {
			p = param.Interface()
		}
		result, err := fn(in.Interface(), p)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the variables every template sees.
func (e *Engine) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(ctx)
	return nil
}

func (e *Engine) load(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

func (e *Engine) execute(name string, tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s: convert data: %w", name, err)
	}
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// toContext keeps maps and scalars as they are and round-trips anything else
// through JSON, so struct tags decide the names templates see. Numbers inside
// round-tripped values become float64; pass maps where ints matter.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	v, err := normalize(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must be an object, got %T", data)
	}
	return pongo2.Context(m), nil
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v, nil
	case pongo2.Context:
		return normalize(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if key = strings.TrimSpace(key); key == "" {
				continue
			}
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	}
}

// Filters registered by New. pongo2 already ships a "date" filter for
// time.Time values, so the form date filter is "usdate".
var (
	registerOnce sync.Once
	registerErr  error
)

func registerFilters() error {
	registerOnce.Do(func() {
		for _, filter := range []struct {
			name string
			fn   pongo2.FilterFunction
		}{
			{"trim", filterTrim},
			{"phone", filterPhone},
			{"usdate", filterDate},
			{"dollars", filterDollars},
		} {
			if err := pongo2.RegisterFilter(filter.name, filter.fn); err != nil {
				registerErr = fmt.Errorf("gotemplate: register filter %q: %w", filter.name, err)
				return
			}
		}
	})
	return registerErr
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterPhone renders stored digits as (555) 555-5555. Values that are not a
// valid number pass through untouched.
func filterPhone(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	digits, err := fields.NormalizePhone(raw)
	if err != nil {
		return pongo2.AsValue(raw), nil
	}
	return pongo2.AsValue(fields.FormatPhone(digits)), nil
}

// filterDate renders ISO or US dates as MM/DD/YYYY.
func filterDate(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	t, err := fields.ParseDate(raw)
	if err != nil {
		return pongo2.AsValue(raw), nil
	}
	return pongo2.AsValue(fields.FormatDate(t)), nil
}

// filterDollars renders whole dollar amounts, given as numbers or strings,
// as "$25".
func filterDollars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNumber() {
		return pongo2.AsValue(fields.FormatDollars(in.Integer())), nil
	}
	n, err := fields.ParseDollars(in.String())
	if err != nil {
		return pongo2.AsValue(in.String()), nil
	}
	return pongo2.AsValue(fields.FormatDollars(n)), nil
}
