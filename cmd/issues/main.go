// Package main is the issue tracker binary: the HTTP API server and the
// terminal client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ncobase/issues/client"
	"github.com/ncobase/issues/config"
	"github.com/ncobase/issues/tui"
	"github.com/ncobase/issues/version"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "issues",
		Short:         "Issue tracker API server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newTUICmd(),
		newVersionCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := InitializeApp(config.Path(configFile))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer cleanup()
			return app.Run()
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (default: search ./config.yaml)")
	return cmd
}

func newTUICmd() *cobra.Command {
	var (
		configFile string
		apiURL     string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if apiURL == "" {
				apiURL = cfg.Client.APIURL
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			api := client.New(apiURL, client.WithTimeout(cfg.Client.Timeout))
			return tui.Run(ctx, api)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (overrides client.api_url)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.GetVersionInfo()
			fmt.Println("Version:", info.Version)
			fmt.Println("Branch:", info.Branch)
			fmt.Println("Revision:", info.Revision)
			fmt.Println("Built At:", info.BuiltAt)
			fmt.Println("Go Version:", info.GoVersion)
		},
	}
}
