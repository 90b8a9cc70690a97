package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/ltiaas-client/internal/app"
	"github.com/samvad-hq/ltiaas-client/internal/config"
	"github.com/samvad-hq/ltiaas-client/internal/logger"
	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
	"github.com/spf13/cobra"
)

var (
	ltik         string
	deploymentID string
	methodName   string
	requestURL   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ltiaas",
		Short:         "LTIaaS API client and launch server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&deploymentID, "deployment", "", "deployment id (defaults to the env deployment or the first file entry)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launch server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	idTokenCmd := &cobra.Command{
		Use:   "idtoken",
		Short: "Fetch the ID token of a launch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *ltiaas.Client) (any, error) {
				return c.GetIDToken(ctx, ltik)
			})
		},
	}

	membershipsCmd := &cobra.Command{
		Use:   "memberships",
		Short: "Fetch the course memberships of a launch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *ltiaas.Client) (any, error) {
				return c.GetMemberships(ctx, ltik)
			})
		},
	}

	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Send an authenticated request to an arbitrary LTIaaS URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			method, err := ltiaas.ParseRequestMethod(methodName)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *ltiaas.Client) (any, error) {
				return c.MakeRequest(ctx, method, requestURL, ltik)
			})
		},
	}
	requestCmd.Flags().StringVar(&methodName, "method", "GET", "HTTP method (GET, POST, PUT, DELETE)")
	requestCmd.Flags().StringVar(&requestURL, "url", "", "absolute request URL")
	_ = requestCmd.MarkFlagRequired("url")

	for _, c := range []*cobra.Command{idTokenCmd, membershipsCmd, requestCmd} {
		c.Flags().StringVar(&ltik, "ltik", "", "launch token; omit to authenticate with the API key only")
	}

	root.AddCommand(serveCmd, idTokenCmd, membershipsCmd, requestCmd)
	return root
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("launch server starting", "config", cfg.LogSafe())

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher, err := app.NewLauncher(ctx, cfg, logger.Default())
	if err != nil {
		logger.ErrorObj("failed to initialize launch server", "error", err)
		return err
	}
	if err := launcher.Run(ctx); err != nil {
		return fmt.Errorf("launch server run: %w", err)
	}
	return nil
}

func withClient(cmd *cobra.Command, call func(context.Context, *ltiaas.Client) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logs go to stderr so stdout stays parseable JSON.
	if _, err := logger.InitTo(cfg, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	clients, defaultID, err := app.BuildClients(cfg, logger.Default())
	if err != nil {
		return err
	}
	id := deploymentID
	if id == "" {
		id = defaultID
	}
	client, ok := clients[id]
	if !ok {
		return fmt.Errorf("unknown deployment %q", id)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := call(ctx, client)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
