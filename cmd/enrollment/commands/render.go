package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-enrollment/components/subjects"
	"github.com/goliatone/go-enrollment/pkg/graphql"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/render"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
	"github.com/goliatone/go-enrollment/pkg/renderers/tui"
	"github.com/goliatone/go-enrollment/pkg/state"
)

func renderCmd() *cobra.Command {
	var (
		outPath      string
		rendererName string
		format       string
	)
	cmd := &cobra.Command{
		Use:   "render <flow> <step>",
		Short: "Render one step for a fresh session",
		Long: "Render one step for a fresh session. The html renderer prints the page markup, " +
			"the tui renderer prompts for the step and prints the answers.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			controller, err := newController(ctx, graphql.NewStubExecutor(nil))
			if err != nil {
				return err
			}
			f, err := lookupFlow(controller.Flows(), args[0])
			if err != nil {
				return err
			}
			started, err := controller.Start(ctx, f, state.InitialState())
			if err != nil {
				return err
			}
			res, err := controller.View(ctx, f, args[1], started.State, "")
			if err != nil {
				return err
			}
			if res.Outcome != pages.OutcomeRender {
				return fmt.Errorf("step %s is not shown to a fresh session (%s to %s)", args[1], res.Outcome, res.Next.Path)
			}

			renderers, err := newRenderers(tui.OutputFormat(format), newSubjects(controller))
			if err != nil {
				return err
			}
			r, err := renderers.Get(rendererName)
			if err != nil {
				return err
			}
			body, err := r.Render(ctx, res.View.Form(), res.View.Options)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			logger.WithField("path", outPath).WithField("contentType", r.ContentType()).Info("step rendered")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "html", "renderer to use (html or tui)")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "tui answer format (json, form or pretty)")
	return cmd
}

func newRenderers(format tui.OutputFormat, ix *subjects.Index) (*render.Registry, error) {
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	prompts, err := tui.New(
		tui.WithOptionSource(ix.Lookup),
		tui.WithOutputFormat(format),
	)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(page, prompts)
}
