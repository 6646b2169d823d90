package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-enrollment/components/subjects"
	"github.com/goliatone/go-enrollment/internal/config"
	"github.com/goliatone/go-enrollment/internal/logging"
	"github.com/goliatone/go-enrollment/internal/metrics"
	"github.com/goliatone/go-enrollment/pkg/flow"
	"github.com/goliatone/go-enrollment/pkg/graphql"
	"github.com/goliatone/go-enrollment/pkg/pages"
)

var (
	cfgPath  string
	logLevel string
	offline  bool

	cfg    config.Config
	logger *logrus.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "enrollment",
		Short:         "Care enrollment wizard",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			logger, err = logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			return err
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default configs/enrollment.yaml or enrollment.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(serveCmd(), flowsCmd(), renderCmd(), walkCmd())
	return root.Execute()
}

// newExecutor returns the GraphQL client, or the canned executor when
// --offline is set. m may be nil.
func newExecutor(m *metrics.Metrics) (graphql.Executor, error) {
	if offline {
		logger.Warn("using canned GraphQL responses")
		return graphql.NewStubExecutor(nil), nil
	}
	opts := []graphql.Option{graphql.WithTimeout(cfg.GraphQL.Timeout)}
	if m != nil {
		opts = append(opts, graphql.WithObserver(m.ObserveGraphQL))
	}
	client, err := graphql.NewClient(cfg.GraphQL.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("graphql client: %w", err)
	}
	return client, nil
}

func newFlows() (*flow.Registry, error) {
	return flow.LoadDefault(
		flow.WithBasePath(cfg.Server.BasePath),
		flow.WithTarget("booking", cfg.URLs.Booking),
		flow.WithTarget("marketing", cfg.URLs.Marketing),
	)
}

func newController(ctx context.Context, exec graphql.Executor, opts ...pages.Option) (*pages.Controller, error) {
	catalog, err := pages.LoadDefaultCatalog(ctx)
	if err != nil {
		return nil, err
	}
	flows, err := newFlows()
	if err != nil {
		return nil, err
	}
	base := []pages.Option{
		pages.WithLogger(logger),
		pages.WithLoginURL(cfg.URLs.Login),
	}
	return pages.NewController(catalog, flows, exec, append(base, opts...)...)
}

// lookupFlow accepts a flow slug or name.
// newSubjects indexes the subject suggestions of the controller's catalog.
func newSubjects(controller *pages.Controller) *subjects.Index {
	return subjects.New(controller.Catalog().Suggestions(subjects.Route))
}

func lookupFlow(flows *flow.Registry, ref string) (*flow.Flow, error) {
	if f, err := flows.BySlug(ref); err == nil {
		return f, nil
	}
	return flows.Flow(flow.Name(ref))
}
