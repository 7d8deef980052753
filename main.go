package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kastheco/layerstack/app"
	cmd2 "github.com/kastheco/layerstack/cmd"
	"github.com/kastheco/layerstack/config"
	"github.com/kastheco/layerstack/config/auditlog"
	sentrypkg "github.com/kastheco/layerstack/internal/sentry"
	"github.com/kastheco/layerstack/layer"
	"github.com/kastheco/layerstack/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "layerstack",
		Short: "layerstack - decide which modal or overlay owns the Escape key.",
		Long: `layerstack arbitrates Escape between stacked modals and overlays.

Run without arguments for an interactive demo, or use simulate to drive
a stack through a scenario file.`,
		// main reports errors itself so they are printed once.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			defer startRuntime(cfg)()
			defer sentrypkg.RecoverPanic()

			sentrypkg.SetContext(cfg.Mode, "demo")

			stack := layer.New()
			if cfg.AuditDB != "" {
				journal, err := auditlog.NewSQLiteLogger(cfg.AuditDB)
				if err != nil {
					log.WarningLog.Printf("audit journal disabled: %v", err)
				} else {
					defer journal.Close()
					auditlog.Record(stack, journal, "demo")
				}
			}

			return app.Run(cmd.Context(), app.NewDemo(stack), stack, cfg.Mode)
		},
	}

	simulateCmd = withRuntime(cmd2.NewSimulateCmd())

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n%s\nLog: %s\n",
				filepath.Join(configDir, config.ConfigFileName), configJson, log.Path())

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of layerstack",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "layerstack version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "https://github.com/kastheco/layerstack/releases/tag/v%s\n", version)
		},
	}
)

// withRuntime wraps a subcommand with the same sentry and log lifetime the
// root command uses.
func withRuntime(c *cobra.Command) *cobra.Command {
	run := c.RunE
	c.RunE = func(cmd *cobra.Command, args []string) error {
		defer startRuntime(config.LoadConfig())()
		defer sentrypkg.RecoverPanic()

		return run(cmd, args)
	}
	return c
}

// initSentry is a var so tests can simulate a failing SDK.
var initSentry = sentrypkg.Init

// startRuntime brings up sentry and logging for one command and returns the
// shutdown to defer. A sentry failure is logged and otherwise ignored.
func startRuntime(cfg *config.Config) func() {
	sentryErr := initSentry(version, cfg.IsTelemetryEnabled())
	log.Initialize(cfg.IsTelemetryEnabled())
	if sentryErr != nil {
		log.WarningLog.Printf("sentry disabled: %v", sentryErr)
	}
	return func() {
		log.Close()
		sentrypkg.Flush()
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(cmd2.NewAuditCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := exitCode(rootCmd.ExecuteContext(ctx), os.Stderr); code != 0 {
		stop()
		os.Exit(code)
	}
}

// exitCode maps a command error to the process status, printing it unless
// the command already reported it.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errUnhealthy) {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}
