package pages

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-enrollment/pkg/fields"
	"github.com/goliatone/go-enrollment/pkg/flow"
	"github.com/goliatone/go-enrollment/pkg/graphql"
	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/render"
	"github.com/goliatone/go-enrollment/pkg/state"
	"github.com/goliatone/go-enrollment/pkg/visibility"
	"github.com/goliatone/go-enrollment/pkg/visibility/expr"
)

// GenericError is shown when a critical request fails for a reason the user
// cannot fix by editing a field.
const GenericError = "Something went wrong on our end. Please try again."

// DefaultLoginURL is used when no login URL is configured.
const DefaultLoginURL = "/login"

// Outcome classifies what a controller call produced.
type Outcome string

const (
	// OutcomeRender means Result.View should be rendered.
	OutcomeRender Outcome = "render"
	// OutcomeAdvanced means the submission was accepted and Result.Next is the
	// following step.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeInvalid means field validation failed; Result.View carries the
	// messages.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeFailed means a critical effect failed; state is unchanged.
	OutcomeFailed Outcome = "failed"
	// OutcomeLogin means the step needs a signed in member.
	OutcomeLogin Outcome = "login"
	// OutcomeSkipped means the requested step does not apply and Result.Next
	// points at the step that does.
	OutcomeSkipped Outcome = "skipped"
)

// View is everything a renderer needs for one step.
type View struct {
	Page    Page
	Step    flow.Step
	Options render.RenderOptions
}

// Form returns the page form model.
func (v View) Form() model.FormModel { return v.Page.Form }

// Result is returned by every controller call. State is the tree to persist.
type Result struct {
	Outcome Outcome
	State   state.AppState
	Actions []state.Action
	Next    flow.Target
	View    *View
}

// Redirect reports whether the caller should navigate to Result.Next.
func (r Result) Redirect() bool {
	return r.View == nil && r.Next.Path != ""
}

// Option configures a Controller.
type Option func(*Controller)

// WithDecoders replaces the action decoders.
func WithDecoders(d state.Decoders) Option {
	return func(c *Controller) {
		if d != nil {
			c.decoders = d
		}
	}
}

// WithEffects replaces the effect registry.
func WithEffects(e Effects) Option {
	return func(c *Controller) {
		if e != nil {
			c.effects = e
		}
	}
}

// WithEvaluator swaps the visibility evaluator used for conditional fields.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(c *Controller) {
		if eval != nil {
			c.eval = eval
		}
	}
}

// WithReducer swaps the root reducer.
func WithReducer(r state.Reducer) Option {
	return func(c *Controller) {
		if r != nil {
			c.reducer = r
		}
	}
}

// WithLogger sets the logger used for swallowed effect failures and
// dispatch tracing.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoginURL sets where members without a valid token are sent.
func WithLoginURL(loginURL string) Option {
	return func(c *Controller) {
		if loginURL = strings.TrimSpace(loginURL); loginURL != "" {
			c.loginURL = loginURL
		}
	}
}

// WithCSRF emits the session form token as a hidden field on every page.
func WithCSRF(fieldName string) Option {
	return func(c *Controller) {
		c.csrfField = strings.TrimSpace(fieldName)
	}
}

// Controller drives one step of a flow: it prepares views, validates and
// reduces submissions, runs page effects and picks the next route.
type Controller struct {
	catalog   *Catalog
	flows     *flow.Registry
	exec      graphql.Executor
	decoders  state.Decoders
	effects   Effects
	eval      visibility.Evaluator
	reducer   state.Reducer
	logger    logrus.FieldLogger
	loginURL  string
	csrfField string
}

// NewController wires a controller and checks that every flow step resolves
// to a page, a decoder and, when set, an effect.
func NewController(catalog *Catalog, flows *flow.Registry, exec graphql.Executor, opts ...Option) (*Controller, error) {
	if catalog == nil || flows == nil {
		return nil, errors.New("pages: catalog and flow registry are required")
	}
	if exec == nil {
		return nil, errors.New("pages: graphql executor is required")
	}
	c := &Controller{
		catalog:  catalog,
		flows:    flows,
		exec:     exec,
		decoders: state.DefaultDecoders(),
		effects:  DefaultEffects(),
		eval:     expr.New(),
		reducer:  state.Root,
		logger:   logrus.StandardLogger(),
		loginURL: DefaultLoginURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Flows exposes the flow registry the controller navigates.
func (c *Controller) Flows() *flow.Registry { return c.flows }

// Catalog exposes the page catalog.
func (c *Controller) Catalog() *Catalog { return c.catalog }

func (c *Controller) check() error {
	for _, name := range c.flows.Names() {
		f, err := c.flows.Flow(name)
		if err != nil {
			return err
		}
		domain, err := DomainFor(f)
		if err != nil {
			return err
		}
		for _, step := range f.Steps {
			if step.External {
				continue
			}
			page, err := c.catalog.Page(step.Page)
			if err != nil {
				return fmt.Errorf("pages: flow %s step %s: %w", f.Name, step.ID, err)
			}
			if _, ok := c.decoders[page.ActionType(domain)]; !ok {
				return fmt.Errorf("pages: flow %s step %s: %w: %s", f.Name, step.ID, state.ErrUnknownAction, page.ActionType(domain))
			}
			if page.Effect == "" {
				continue
			}
			if _, ok := c.effects[page.Effect]; !ok {
				return fmt.Errorf("pages: flow %s step %s: unknown effect %q", f.Name, step.ID, page.Effect)
			}
		}
	}
	return nil
}

// DomainFor returns the state sub-tree a flow writes to.
func DomainFor(f *flow.Flow) (state.Domain, error) {
	if f == nil {
		return "", errors.New("pages: flow is nil")
	}
	if f.Persona == flow.PersonaSeeker {
		return state.DomainSeeker, nil
	}
	domain, ok := state.ProviderDomain(f.Vertical)
	if !ok {
		return "", fmt.Errorf("pages: flow %s has no provider domain for %q", f.Name, f.Vertical)
	}
	return domain, nil
}

// Start begins f. A flow that is already in progress resumes at its first
// reachable step that has not been completed.
func (c *Controller) Start(_ context.Context, f *flow.Flow, st state.AppState) (Result, error) {
	domain, err := DomainFor(f)
	if err != nil {
		return Result{}, err
	}
	resume := st.Flow.Active(string(f.Name))

	actions := []state.Action{state.StartFlow(string(f.Name))}
	if f.Persona == flow.PersonaSeeker {
		actions = append(actions, state.SetVertical(f.Vertical))
	}
	store := c.newStore(st)
	next := store.Dispatch(actions...)
	vctx := c.visibilityContext(f, domain, next, nil)

	if resume {
		for _, step := range f.Steps {
			if next.Flow.HasVisited(step.ID) {
				continue
			}
			ok, err := c.flows.Applies(f.Name, step.ID, vctx)
			if err != nil {
				return Result{}, err
			}
			if ok {
				return Result{Outcome: OutcomeSkipped, State: next, Actions: actions, Next: flow.Target{Step: step.ID, Path: step.Path, External: step.External}}, nil
			}
		}
	}

	target, err := c.flows.Start(f.Name, vctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeSkipped, State: next, Actions: actions, Next: target}, nil
}

// View prepares stepID for rendering. Steps that need a member redirect to
// login, steps whose rule does not hold redirect to the next one that does.
// A step of a flow the session is not running goes through Start first.
func (c *Controller) View(ctx context.Context, f *flow.Flow, stepID string, st state.AppState, csrfToken string) (Result, error) {
	step, page, domain, err := c.resolve(f, stepID)
	if err != nil {
		return Result{}, err
	}
	if !st.Flow.Active(string(f.Name)) {
		return c.restart(ctx, f, step, st)
	}
	if step.External {
		return Result{Outcome: OutcomeSkipped, State: st, Next: flow.Target{Step: step.ID, Path: step.Path, External: true}}, nil
	}
	if page.RequiresAuth && !st.Flow.Authenticated() {
		return Result{Outcome: OutcomeLogin, State: st, Next: c.loginTarget(step.Path)}, nil
	}

	vctx := c.visibilityContext(f, domain, st, nil)
	ok, err := c.flows.Applies(f.Name, step.ID, vctx)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		next, err := c.flows.Next(f.Name, step.ID, vctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeSkipped, State: st, Next: next}, nil
	}

	view, err := c.buildView(f, step, page, domain, st, nil, nil, nil, csrfToken)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeRender, State: st, View: view}, nil
}

// Submit validates form against the page of stepID, dispatches the page action
// and runs its effect. On success Result.Next is the following step, or the
// flow's completion URL after the last one. Submissions for a flow the
// session is not running are dropped and routed through Start.
func (c *Controller) Submit(ctx context.Context, f *flow.Flow, stepID string, st state.AppState, form url.Values, csrfToken string) (Result, error) {
	step, page, domain, err := c.resolve(f, stepID)
	if err != nil {
		return Result{}, err
	}
	if !st.Flow.Active(string(f.Name)) {
		return c.restart(ctx, f, step, st)
	}
	if step.External {
		return Result{Outcome: OutcomeSkipped, State: st, Next: flow.Target{Step: step.ID, Path: step.Path, External: true}}, nil
	}
	if page.RequiresAuth && !st.Flow.Authenticated() {
		return Result{Outcome: OutcomeLogin, State: st, Next: c.loginTarget(step.Path)}, nil
	}
	log := c.logger.WithFields(logrus.Fields{"flow": f.Name, "step": step.ID, "page": page.ID})

	submitted := rawValues(page.Form, form)
	hidden, err := visibility.Hidden(c.eval, page.Form.Fields, c.visibilityContext(f, domain, st, submitted))
	if err != nil {
		return Result{}, fmt.Errorf("pages: %s: %w", page.ID, err)
	}

	values := make(map[string]any, len(page.Form.Fields))
	fieldErrors := map[string][]string{}
	for _, field := range page.Form.Fields {
		if hidden[field.Name] {
			continue
		}
		value, msgs := fields.Validate(field, form[field.Name])
		if len(msgs) > 0 {
			fieldErrors[field.Name] = msgs
			continue
		}
		if value != nil {
			values[field.Name] = value
		}
	}
	if len(fieldErrors) > 0 {
		return c.reject(OutcomeInvalid, f, step, page, domain, st, submitted, fieldErrors, nil, csrfToken)
	}

	action, err := c.decoders.Decode(page.ActionType(domain), values)
	if err != nil {
		if errors.Is(err, state.ErrUnknownAction) {
			return Result{}, fmt.Errorf("pages: %s: %w", page.ID, err)
		}
		log.WithError(err).Warn("submission could not be decoded")
		return c.reject(OutcomeInvalid, f, step, page, domain, st, submitted, nil, []string{"Please check your answers and try again."}, csrfToken)
	}

	store := c.newStore(st)
	dispatched := []state.Action{action, state.StepCompleted(step.ID)}
	store.Dispatch(dispatched...)

	var redirect string
	if page.Effect != "" {
		current := store.State()
		result, err := c.effects[page.Effect](graphql.WithAuthToken(ctx, current.Flow.AuthToken), EffectContext{
			Exec:   c.exec,
			State:  current,
			Domain: domain,
			Flow:   f,
			Values: values,
			Logger: log,
		})
		switch {
		case err == nil:
			if len(result.Actions) > 0 {
				store.Dispatch(result.Actions...)
				dispatched = append(dispatched, result.Actions...)
			}
			redirect = result.Redirect
		case errors.Is(err, graphql.ErrUnauthenticated) && page.RequiresAuth:
			log.WithError(err).Info("member token rejected")
			return Result{Outcome: OutcomeLogin, State: st, Next: c.loginTarget(step.Path)}, nil
		case page.Critical:
			log.WithError(err).WithField("effect", page.Effect).Error("critical effect failed")
			fieldErrs, formErrs := c.effectErrors(page, err)
			return c.reject(OutcomeFailed, f, step, page, domain, st, submitted, fieldErrs, formErrs, csrfToken)
		default:
			log.WithError(err).WithField("effect", page.Effect).Warn("effect failed")
		}
	}

	next := store.State()
	target, err := c.flows.Next(f.Name, step.ID, c.visibilityContext(f, domain, next, nil))
	if err != nil {
		return Result{}, err
	}
	if redirect != "" {
		target = flow.Target{Path: redirect, External: true}
	}
	if target.Step == "" {
		complete := state.CompleteFlow()
		next = store.Dispatch(complete)
		dispatched = append(dispatched, complete)
	}
	return Result{Outcome: OutcomeAdvanced, State: next, Actions: dispatched, Next: target}, nil
}

// Back returns the step before stepID. The first step points at itself.
func (c *Controller) Back(_ context.Context, f *flow.Flow, stepID string, st state.AppState) (flow.Target, error) {
	domain, err := DomainFor(f)
	if err != nil {
		return flow.Target{}, err
	}
	prev, ok, err := c.flows.Previous(f.Name, stepID, c.visibilityContext(f, domain, st, nil))
	if err != nil {
		return flow.Target{}, err
	}
	if !ok {
		return flow.Target{Step: stepID, Path: c.flows.Path(f, stepID)}, nil
	}
	return prev, nil
}

// restart begins f for a step request that arrived outside of it.
func (c *Controller) restart(ctx context.Context, f *flow.Flow, step flow.Step, st state.AppState) (Result, error) {
	c.logger.WithFields(logrus.Fields{
		"flow":   f.Name,
		"step":   step.ID,
		"active": st.Flow.Name,
	}).Debug("step requested outside the active flow")
	return c.Start(ctx, f, st)
}

func (c *Controller) resolve(f *flow.Flow, stepID string) (flow.Step, Page, state.Domain, error) {
	domain, err := DomainFor(f)
	if err != nil {
		return flow.Step{}, Page{}, "", err
	}
	step, ok := f.Step(stepID)
	if !ok {
		return flow.Step{}, Page{}, "", fmt.Errorf("%w: %s/%s", flow.ErrStepNotFound, f.Name, stepID)
	}
	if step.External {
		return step, Page{}, domain, nil
	}
	page, err := c.catalog.Page(step.Page)
	if err != nil {
		return flow.Step{}, Page{}, "", err
	}
	return step, page, domain, nil
}

func (c *Controller) reject(outcome Outcome, f *flow.Flow, step flow.Step, page Page, domain state.Domain, st state.AppState, submitted map[string]any, fieldErrs map[string][]string, formErrs []string, csrfToken string) (Result, error) {
	view, err := c.buildView(f, step, page, domain, st, submitted, fieldErrs, formErrs, csrfToken)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome, State: st, View: view}, nil
}

func (c *Controller) effectErrors(page Page, err error) (map[string][]string, []string) {
	var inputErrs graphql.InputErrors
	if !errors.As(err, &inputErrs) {
		return nil, []string{GenericError}
	}
	mapping := render.MapErrorPayload(page.Form, errorPayload(err))
	if len(mapping.Fields) == 0 && len(mapping.Form) == 0 {
		return nil, []string{GenericError}
	}
	return mapping.Fields, mapping.Form
}

func (c *Controller) buildView(f *flow.Flow, step flow.Step, page Page, domain state.Domain, st state.AppState, submitted map[string]any, fieldErrs map[string][]string, formErrs []string, csrfToken string) (*View, error) {
	values := state.Values(st, domain)
	for key, value := range submitted {
		values[key] = value
	}
	vctx := c.visibilityContext(f, domain, st, submitted)

	hidden, err := visibility.Hidden(c.eval, page.Form.Fields, vctx)
	if err != nil {
		return nil, fmt.Errorf("pages: %s: %w", page.ID, err)
	}
	position, total, err := c.flows.Progress(f.Name, step.ID, vctx)
	if err != nil {
		return nil, err
	}
	back, hasBack, err := c.flows.Previous(f.Name, step.ID, vctx)
	if err != nil {
		return nil, err
	}

	title := step.Title
	if title == "" {
		title = page.Form.Title
	}
	opts := render.RenderOptions{
		Values:     values,
		Errors:     fieldErrs,
		FormErrors: render.MergeFormErrors(formErrs),
		Hidden:     hidden,
		Page: render.PageContext{
			Flow:        string(f.Name),
			FlowTitle:   f.Title,
			Step:        step.ID,
			Title:       title,
			Description: page.Form.Description,
			Position:    position,
			Total:       total,
			ActionURL:   step.Path,
			SubmitLabel: page.SubmitLabel(),
		},
	}
	if hasBack {
		opts.Page.BackURL = back.Path
	}
	if c.csrfField != "" && csrfToken != "" {
		opts.HiddenFields = render.MergeHiddenFields(nil, render.CSRFToken(c.csrfField, csrfToken))
	}
	return &View{Page: page, Step: step, Options: opts}, nil
}

func (c *Controller) visibilityContext(f *flow.Flow, domain state.Domain, st state.AppState, submitted map[string]any) visibility.Context {
	values := state.Values(st, domain)
	for key, value := range submitted {
		values[key] = value
	}
	return visibility.Context{
		Values: values,
		Extras: map[string]any{
			"authenticated": st.Flow.Authenticated(),
			"flow":          string(f.Name),
			"persona":       string(f.Persona),
			"vertical":      string(f.Vertical),
		},
	}
}

func (c *Controller) newStore(st state.AppState) *state.Store {
	return state.NewStore(st, c.reducer, state.WithMiddleware(func(_ state.AppState, action state.Action) {
		c.logger.WithField("action", action.Type).Debug("dispatch")
	}))
}

func (c *Controller) loginTarget(returnTo string) flow.Target {
	sep := "?"
	if strings.Contains(c.loginURL, "?") {
		sep = "&"
	}
	return flow.Target{
		Path:     c.loginURL + sep + url.Values{"returnTo": {returnTo}}.Encode(),
		External: true,
	}
}

// rawValues keeps the submitted strings of the page fields so a rejected form
// re-renders with what the user typed. Passwords are dropped.
func rawValues(form model.FormModel, submitted url.Values) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		if field.Format == fields.FormatKindPassword {
			continue
		}
		raw, ok := submitted[field.Name]
		if !ok {
			if field.Type == model.FieldTypeBoolean {
				out[field.Name] = false
			}
			continue
		}
		if field.Type == model.FieldTypeArray {
			out[field.Name] = splitList(raw)
			continue
		}
		if len(raw) > 0 {
			out[field.Name] = strings.TrimSpace(raw[0])
		}
	}
	return out
}

func splitList(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
