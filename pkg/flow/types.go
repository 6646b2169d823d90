package flow

import (
	"errors"

	"github.com/goliatone/go-enrollment/pkg/graphql"
)

var (
	ErrFlowNotFound = errors.New("flow: flow not found")
	ErrStepNotFound = errors.New("flow: step not found")
)

// Name identifies a flow, e.g. SEEKER_CHILD_CARE.
type Name string

// Persona is who a flow enrolls.
type Persona string

const (
	PersonaSeeker   Persona = "seeker"
	PersonaProvider Persona = "provider"
)

// Step is one page of a flow.
type Step struct {
	ID       string `yaml:"id" json:"id"`
	Page     string `yaml:"page" json:"page,omitempty"`
	Title    string `yaml:"title" json:"title,omitempty"`
	When     string `yaml:"when" json:"when,omitempty"`
	URL      string `yaml:"url" json:"url,omitempty"`
	Path     string `yaml:"-" json:"path"`
	External bool   `yaml:"-" json:"external,omitempty"`
}

// Flow is a named sequence of steps for one persona and vertical.
type Flow struct {
	Name        Name                `yaml:"name" json:"name"`
	Persona     Persona             `yaml:"persona" json:"persona"`
	Vertical    graphql.ServiceType `yaml:"vertical" json:"vertical"`
	Slug        string              `yaml:"slug" json:"slug"`
	Title       string              `yaml:"title" json:"title,omitempty"`
	Steps       []Step              `yaml:"steps" json:"steps"`
	CompleteURL string              `yaml:"complete" json:"completeUrl"`
}

// Index returns the position of stepID, or -1.
func (f *Flow) Index(stepID string) int {
	for i, step := range f.Steps {
		if step.ID == stepID {
			return i
		}
	}
	return -1
}

// Step returns the step with the given id.
func (f *Flow) Step(stepID string) (Step, bool) {
	if i := f.Index(stepID); i >= 0 {
		return f.Steps[i], true
	}
	return Step{}, false
}

// First returns the first declared step.
func (f *Flow) First() Step {
	if len(f.Steps) == 0 {
		return Step{}
	}
	return f.Steps[0]
}

// Target is a navigation destination.
type Target struct {
	Step     string `json:"step,omitempty"`
	Path     string `json:"path"`
	External bool   `json:"external,omitempty"`
}
