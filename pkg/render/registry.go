package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry looks renderers up by Name. The CLI resolves its --renderer flag
// through one.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

func NewRegistry(renderers ...Renderer) (*Registry, error) {
	reg := &Registry{renderers: make(map[string]Renderer, len(renderers))}
	for _, r := range renderers {
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds r under r.Name(). Names must be unique.
func (reg *Registry) Register(r Renderer) error {
	if r == nil || r.Name() == "" {
		return fmt.Errorf("render: renderer with a name is required")
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, taken := reg.renderers[r.Name()]; taken {
		return fmt.Errorf("render: renderer %q already registered", r.Name())
	}
	reg.renderers[r.Name()] = r
	return nil
}

// Get returns the renderer registered as name.
func (reg *Registry) Get(name string) (Renderer, error) {
	reg.mu.RLock()
	r, ok := reg.renderers[name]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: unknown renderer %q (have %v)", name, reg.Names())
	}
	return r, nil
}

// Names lists registered renderers alphabetically.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.renderers))
	for name := range reg.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
