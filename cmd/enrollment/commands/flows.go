package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-enrollment/pkg/flow"
)

func flowsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "flows [slug|name]",
		Short: "List flows and their steps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flows, err := newFlows()
			if err != nil {
				return err
			}

			var list []*flow.Flow
			if len(args) == 1 {
				f, err := lookupFlow(flows, args[0])
				if err != nil {
					return err
				}
				list = append(list, f)
			} else {
				for _, name := range flows.Names() {
					f, err := flows.Flow(name)
					if err != nil {
						return err
					}
					list = append(list, f)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, f := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Persona, f.Vertical, flows.Path(f, f.First().ID))
				for _, step := range f.Steps {
					rule := step.When
					if step.External {
						rule = "external " + step.Path
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", step.ID, step.Page, rule)
				}
				fmt.Fprintf(tw, "  (complete)\t%s\t\t\n", f.CompleteURL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print flows as JSON")
	return cmd
}
