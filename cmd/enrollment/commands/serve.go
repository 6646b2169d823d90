package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-enrollment/internal/auth"
	"github.com/goliatone/go-enrollment/internal/config"
	"github.com/goliatone/go-enrollment/internal/metrics"
	"github.com/goliatone/go-enrollment/internal/middleware"
	"github.com/goliatone/go-enrollment/internal/server"
	"github.com/goliatone/go-enrollment/internal/session"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the enrollment wizard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&offline, "offline", false, "answer GraphQL operations with canned responses")
	return cmd
}

func serve(ctx context.Context) error {
	m := metrics.New(true)

	exec, err := newExecutor(m)
	if err != nil {
		return err
	}
	controller, err := newController(ctx, exec, pages.WithCSRF(server.CSRFField))
	if err != nil {
		return err
	}
	renderer, err := html.New()
	if err != nil {
		return err
	}

	sessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	if closer, ok := sessions.(io.Closer); ok {
		defer closer.Close()
	}

	srv, err := server.New(controller, renderer, sessions,
		server.WithLogger(logger),
		server.WithMetrics(m),
		server.WithLimiter(middleware.NewMapLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)),
		server.WithCookie(cfg.Session.CookieName, cfg.SecureCookies(), cfg.Session.TTL),
		server.WithAuthChecker(auth.NewChecker()),
		server.WithSubjects(newSubjects(controller)),
		server.WithHomeURL(cfg.URLs.Marketing),
	)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"basePath": cfg.Server.BasePath,
		"sessions": cfg.Session.Driver,
		"graphql":  cfg.GraphQL.Endpoint,
		"offline":  offline,
	}).Info("starting enrollment server")
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout)
}

func newSessionStore(ctx context.Context, sc config.SessionConfig) (session.Store, error) {
	switch sc.Driver {
	case config.DriverRedis:
		store, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     sc.RedisAddr,
			DB:       sc.RedisDB,
			Password: sc.RedisPassword,
			Prefix:   sc.RedisPrefix,
			TTL:      sc.TTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory, "":
		return session.NewMemoryStore(sc.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", sc.Driver)
	}
}
