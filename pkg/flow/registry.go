package flow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/visibility"
)

// Registry holds the loaded flows and navigates between their steps.
// It is immutable after Parse and safe for concurrent use.
type Registry struct {
	basePath  string
	evaluator visibility.Evaluator
	flows     map[Name]*Flow
	bySlug    map[string]*Flow
}

// BasePath returns the prefix every step path starts with.
func (r *Registry) BasePath() string { return r.basePath }

// Flow returns the flow called name.
func (r *Registry) Flow(name Name) (*Flow, error) {
	f, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, name)
	}
	return f, nil
}

// BySlug returns the flow served under slug.
func (r *Registry) BySlug(slug string) (*Flow, error) {
	f, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: slug %q", ErrFlowNotFound, slug)
	}
	return f, nil
}

// Names lists every flow name in sorted order.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.flows))
	for name := range r.flows {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Path builds the wizard path of stepID in f.
func (r *Registry) Path(f *Flow, stepID string) string {
	return r.basePath + "/" + f.Slug + "/" + stepID
}

// ParsePath resolves a wizard path into its flow and step. A path naming only
// the flow returns an empty step id.
func (r *Registry) ParsePath(path string) (*Flow, string, error) {
	rest, ok := strings.CutPrefix(path, r.basePath+"/")
	if !ok {
		return nil, "", fmt.Errorf("%w: path %q", ErrFlowNotFound, path)
	}
	slug, stepID, _ := strings.Cut(strings.Trim(rest, "/"), "/")
	f, err := r.BySlug(slug)
	if err != nil {
		return nil, "", err
	}
	if stepID == "" {
		return f, "", nil
	}
	if strings.Contains(stepID, "/") || f.Index(stepID) < 0 {
		return nil, "", fmt.Errorf("%w: %s/%s", ErrStepNotFound, f.Name, stepID)
	}
	return f, stepID, nil
}

// Start returns the first step of the flow whose When rule holds.
func (r *Registry) Start(name Name, ctx visibility.Context) (Target, error) {
	f, err := r.Flow(name)
	if err != nil {
		return Target{}, err
	}
	return r.scan(f, 0, +1, ctx)
}

// Next returns the step after stepID, skipping steps whose When rule is
// false. Past the last step it returns the completion URL as an external
// target.
func (r *Registry) Next(name Name, stepID string, ctx visibility.Context) (Target, error) {
	f, idx, err := r.locate(name, stepID)
	if err != nil {
		return Target{}, err
	}
	return r.scan(f, idx+1, +1, ctx)
}

// Previous returns the step before stepID. ok is false when stepID is the
// first reachable step.
func (r *Registry) Previous(name Name, stepID string, ctx visibility.Context) (Target, bool, error) {
	f, idx, err := r.locate(name, stepID)
	if err != nil {
		return Target{}, false, err
	}
	for i := idx - 1; i >= 0; i-- {
		step := f.Steps[i]
		if step.External {
			continue
		}
		ok, err := r.applies(step, ctx)
		if err != nil {
			return Target{}, false, err
		}
		if ok {
			return Target{Step: step.ID, Path: step.Path}, true, nil
		}
	}
	return Target{}, false, nil
}

// Progress returns the 1-based position of stepID among the reachable steps
// and their total.
func (r *Registry) Progress(name Name, stepID string, ctx visibility.Context) (int, int, error) {
	f, idx, err := r.locate(name, stepID)
	if err != nil {
		return 0, 0, err
	}
	position, total := 0, 0
	for i, step := range f.Steps {
		ok, err := r.applies(step, ctx)
		if err != nil {
			return 0, 0, err
		}
		if !ok && i != idx {
			continue
		}
		total++
		if i <= idx {
			position = total
		}
	}
	return position, total, nil
}

// Applies reports whether stepID is reachable for ctx.
func (r *Registry) Applies(name Name, stepID string, ctx visibility.Context) (bool, error) {
	f, idx, err := r.locate(name, stepID)
	if err != nil {
		return false, err
	}
	return r.applies(f.Steps[idx], ctx)
}

func (r *Registry) locate(name Name, stepID string) (*Flow, int, error) {
	f, err := r.Flow(name)
	if err != nil {
		return nil, 0, err
	}
	idx := f.Index(stepID)
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w: %s/%s", ErrStepNotFound, name, stepID)
	}
	return f, idx, nil
}

func (r *Registry) scan(f *Flow, from, dir int, ctx visibility.Context) (Target, error) {
	for i := from; i >= 0 && i < len(f.Steps); i += dir {
		step := f.Steps[i]
		ok, err := r.applies(step, ctx)
		if err != nil {
			return Target{}, err
		}
		if ok {
			return Target{Step: step.ID, Path: step.Path, External: step.External}, nil
		}
	}
	return Target{Path: f.CompleteURL, External: true}, nil
}

func (r *Registry) applies(step Step, ctx visibility.Context) (bool, error) {
	if step.When == "" || r.evaluator == nil {
		return true, nil
	}
	ok, err := r.evaluator.Eval(step.ID, step.When, ctx)
	if err != nil {
		return false, fmt.Errorf("flow: step %q: %w", step.ID, err)
	}
	return ok, nil
}
