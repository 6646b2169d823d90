// Package flow defines the enrollment funnels and answers "where next?".
//
// Flows are declared in YAML (an embedded flows.yaml ships every seeker and
// provider funnel). A Registry resolves a flow by name or URL slug and walks
// its steps, skipping any step whose When rule does not hold for the current
// state. Walking past the last step yields the flow's completion URL, which
// always points outside the wizard.
package flow
