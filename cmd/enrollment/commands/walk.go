package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-enrollment/pkg/flow"
	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/render"
	"github.com/goliatone/go-enrollment/pkg/renderers/tui"
	"github.com/goliatone/go-enrollment/pkg/state"
)

// errLoginRequired stops a walk that reaches a step needing a member the
// walk did not create.
var errLoginRequired = errors.New("walk: step requires a signed in member")

type collector interface {
	Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (url.Values, error)
}

func walkCmd() *cobra.Command {
	var (
		maxPrompts int
		showState  bool
	)
	cmd := &cobra.Command{
		Use:   "walk <flow>",
		Short: "Complete a flow from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exec, err := newExecutor(nil)
			if err != nil {
				return err
			}
			controller, err := newController(ctx, exec)
			if err != nil {
				return err
			}
			f, err := lookupFlow(controller.Flows(), args[0])
			if err != nil {
				return err
			}
			prompts, err := tui.New(
				tui.WithOptionSource(newSubjects(controller).Lookup),
				tui.WithTheme(tui.Theme{InfoPrefix: "» ", ErrorPrefix: "! "}),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st, target, err := walk(ctx, controller, f, prompts, out, maxPrompts)
			if err != nil {
				if errors.Is(err, errLoginRequired) {
					fmt.Fprintf(out, "Sign in to continue: %s\n", target.Path)
				}
				return err
			}
			fmt.Fprintf(out, "Done. Continue at %s\n", target.Path)
			if showState {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "answer GraphQL operations with canned responses")
	cmd.Flags().IntVar(&maxPrompts, "max-prompts", 100, "give up after this many pages")
	cmd.Flags().BoolVar(&showState, "state", false, "print the final state as JSON")
	return cmd
}

// walk drives f from a fresh state until it reaches the completion URL or an
// external step. Rejected submissions are collected again with their errors.
func walk(ctx context.Context, controller *pages.Controller, f *flow.Flow, c collector, out io.Writer, maxPrompts int) (state.AppState, flow.Target, error) {
	res, err := controller.Start(ctx, f, state.InitialState())
	if err != nil {
		return state.AppState{}, flow.Target{}, err
	}
	st, target := res.State, res.Next

	var view *pages.View
	for prompts := 0; prompts < maxPrompts; {
		if view == nil {
			if target.External || target.Step == "" {
				return st, target, nil
			}
			res, err := controller.View(ctx, f, target.Step, st, "")
			if err != nil {
				return st, target, err
			}
			switch res.Outcome {
			case pages.OutcomeRender:
				view = res.View
			case pages.OutcomeSkipped:
				target = res.Next
				continue
			case pages.OutcomeLogin:
				return st, res.Next, errLoginRequired
			default:
				return st, target, fmt.Errorf("walk: unexpected outcome %s on %s", res.Outcome, target.Step)
			}
		}

		prompts++
		values, err := c.Collect(ctx, view.Form(), view.Options)
		if err != nil {
			return st, target, err
		}
		res, err := controller.Submit(ctx, f, target.Step, st, values, "")
		if err != nil {
			return st, target, err
		}
		switch res.Outcome {
		case pages.OutcomeAdvanced:
			fmt.Fprintf(out, "✓ %s\n", view.Options.Page.Title)
			st, target, view = res.State, res.Next, nil
		case pages.OutcomeInvalid, pages.OutcomeFailed:
			view = res.View
		case pages.OutcomeSkipped:
			target, view = res.Next, nil
		case pages.OutcomeLogin:
			return st, res.Next, errLoginRequired
		default:
			return st, target, fmt.Errorf("walk: unexpected outcome %s on %s", res.Outcome, target.Step)
		}
	}
	return st, target, fmt.Errorf("walk: gave up after %d pages", maxPrompts)
}
