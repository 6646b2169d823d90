package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Values pre-populates rendered controls keyed by field name. Values are the
	// typed values held in state (or the raw submission on re-render) and are
	// formatted per field before they reach the markup.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field name.
	Errors map[string][]string
	// FormErrors are messages that belong to no single field, such as a failed
	// account creation.
	FormErrors []string
	// Hidden lists fields whose visibility rule evaluated to false. Renderers
	// skip them entirely.
	Hidden map[string]bool
	// HiddenFields are emitted as hidden inputs (CSRF token, flow marker).
	HiddenFields map[string]string
	// Page carries the wizard chrome around the form.
	Page PageContext
}

// PageContext describes where the rendered form sits inside its flow.
type PageContext struct {
	Flow        string
	FlowTitle   string
	Step        string
	Title       string
	Description string
	Position    int
	Total       int
	ActionURL   string
	BackURL     string
	SubmitLabel string
}

// Progress returns the completed share of the flow as a whole percentage.
func (p PageContext) Progress() int {
	if p.Total <= 0 {
		return 0
	}
	position := p.Position
	if position > p.Total {
		position = p.Total
	}
	return position * 100 / p.Total
}

// IsHidden reports whether name is hidden by a visibility rule.
func (o RenderOptions) IsHidden(name string) bool {
	return o.Hidden[name]
}
