package flow

import (
	_ "embed"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-enrollment/pkg/visibility"
	"github.com/goliatone/go-enrollment/pkg/visibility/expr"
)

//go:embed flows.yaml
var defaultFlows []byte

// DefaultBasePath prefixes every wizard path.
const DefaultBasePath = "/enroll"

type document struct {
	Flows []Flow `yaml:"flows"`
}

type config struct {
	basePath  string
	evaluator visibility.Evaluator
	targets   map[string]string
}

// Option customises a Registry.
type Option func(*config)

// WithBasePath sets the path prefix of wizard steps.
func WithBasePath(base string) Option {
	return func(c *config) {
		c.basePath = "/" + strings.Trim(base, "/")
		if c.basePath == "/" {
			c.basePath = ""
		}
	}
}

// WithEvaluator sets the evaluator used for step When rules.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(c *config) {
		if eval != nil {
			c.evaluator = eval
		}
	}
}

// WithTarget registers a base URL substituted for "{name}" in completion
// and external step URLs.
func WithTarget(name, baseURL string) Option {
	return func(c *config) {
		c.targets[name] = strings.TrimRight(baseURL, "/")
	}
}

// LoadDefault parses the embedded flow definitions.
func LoadDefault(opts ...Option) (*Registry, error) {
	return Parse(defaultFlows, opts...)
}

// Load parses the flow definitions stored at path in fsys.
func Load(fsys fs.FS, path string, opts ...Option) (*Registry, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("flow: read %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse validates raw YAML flow definitions and builds a Registry.
func Parse(data []byte, opts ...Option) (*Registry, error) {
	cfg := config{
		basePath:  DefaultBasePath,
		evaluator: expr.New(),
		targets:   map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("flow: decode: %w", err)
	}
	if len(doc.Flows) == 0 {
		return nil, fmt.Errorf("flow: no flows defined")
	}

	reg := &Registry{
		basePath:  cfg.basePath,
		evaluator: cfg.evaluator,
		flows:     make(map[Name]*Flow, len(doc.Flows)),
		bySlug:    make(map[string]*Flow, len(doc.Flows)),
	}
	compiler, _ := cfg.evaluator.(interface{ Compile(string) error })

	for i := range doc.Flows {
		f := doc.Flows[i]
		if err := validateFlow(&f, compiler); err != nil {
			return nil, err
		}
		if _, dup := reg.flows[f.Name]; dup {
			return nil, fmt.Errorf("flow: duplicate flow %q", f.Name)
		}
		if _, dup := reg.bySlug[f.Slug]; dup {
			return nil, fmt.Errorf("flow: duplicate slug %q", f.Slug)
		}

		f.CompleteURL = expandTargets(f.CompleteURL, cfg.targets)
		for j := range f.Steps {
			step := &f.Steps[j]
			if step.URL != "" {
				step.URL = expandTargets(step.URL, cfg.targets)
				step.Path = step.URL
				step.External = true
				continue
			}
			step.Path = reg.basePath + "/" + f.Slug + "/" + step.ID
		}

		flow := f
		reg.flows[f.Name] = &flow
		reg.bySlug[f.Slug] = &flow
	}
	return reg, nil
}

func validateFlow(f *Flow, compiler interface{ Compile(string) error }) error {
	if f.Name == "" {
		return fmt.Errorf("flow: flow name is required")
	}
	if f.Slug == "" || strings.Contains(f.Slug, "/") || url.PathEscape(f.Slug) != f.Slug {
		return fmt.Errorf("flow: %s: invalid slug %q", f.Name, f.Slug)
	}
	if f.Persona != PersonaSeeker && f.Persona != PersonaProvider {
		return fmt.Errorf("flow: %s: unknown persona %q", f.Name, f.Persona)
	}
	if !f.Vertical.Valid() {
		return fmt.Errorf("flow: %s: unknown vertical %q", f.Name, f.Vertical)
	}
	if f.CompleteURL == "" {
		return fmt.Errorf("flow: %s: complete url is required", f.Name)
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("flow: %s: no steps", f.Name)
	}

	seen := make(map[string]struct{}, len(f.Steps))
	for _, step := range f.Steps {
		if step.ID == "" || strings.Contains(step.ID, "/") {
			return fmt.Errorf("flow: %s: invalid step id %q", f.Name, step.ID)
		}
		if step.ID == "back" {
			return fmt.Errorf("flow: %s: step id %q is reserved", f.Name, step.ID)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("flow: %s: duplicate step %q", f.Name, step.ID)
		}
		seen[step.ID] = struct{}{}
		if step.Page == "" && step.URL == "" {
			return fmt.Errorf("flow: %s: step %q needs a page or url", f.Name, step.ID)
		}
		if compiler != nil {
			if err := compiler.Compile(step.When); err != nil {
				return fmt.Errorf("flow: %s: step %q: %w", f.Name, step.ID, err)
			}
		}
	}
	return nil
}

func expandTargets(raw string, targets map[string]string) string {
	for name, base := range targets {
		raw = strings.ReplaceAll(raw, "{"+name+"}", base)
	}
	return raw
}
