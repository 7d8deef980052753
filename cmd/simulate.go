package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kastheco/layerstack/config"
	"github.com/kastheco/layerstack/config/auditlog"
	"github.com/kastheco/layerstack/devtools"
	"github.com/kastheco/layerstack/internal/metrics"
	"github.com/kastheco/layerstack/internal/scenario"
	"github.com/kastheco/layerstack/internal/sentry"
	"github.com/kastheco/layerstack/layer"
	"github.com/kastheco/layerstack/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// auditOff disables the journal when passed to --audit.
const auditOff = "none"

// SimulateOptions controls executeSimulate.
type SimulateOptions struct {
	// AuditDB is the journal path; empty disables auditing.
	AuditDB string
	Metrics bool
	Quiet   bool
	Mode    string
	// DebugKey is the devtools namespace entry for the run's stack.
	DebugKey string
}

// executeSimulate runs the scenario at path and writes the per-step results,
// the final layer table and optionally metrics to out. An unmet expectation
// is returned after the results are printed.
func executeSimulate(ctx context.Context, path string, opts SimulateOptions, out io.Writer) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	source := filepath.Base(path)
	sentry.SetContext(opts.Mode, source)

	var journal auditlog.Logger = auditlog.NopLogger()
	if opts.AuditDB != "" {
		sqlLogger, err := auditlog.NewSQLiteLogger(opts.AuditDB)
		if err != nil {
			return err
		}
		journal = sqlLogger
	}
	defer journal.Close()

	stack := layer.New()
	defer stack.Close()
	stop := auditlog.Record(stack, journal, source)
	defer stop()

	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)
	collectors.Observe(stack)

	if dbg := devtools.Attach(stack, devtools.Options{Mode: opts.Mode, Key: opts.DebugKey, Out: out}); dbg != nil {
		stack.Subscribe(func(ev layer.Event) {
			if ev.Type == layer.EventCloseFailed {
				log.WarningLog.Printf("%s: %s", source, dbg.DescribeTop())
			}
		})
	}

	journal.Emit(auditlog.NewEvent(auditlog.EventScenarioStarted, sc.Name, auditlog.WithSource(source)))
	log.InfoLog.Printf("simulate: running %s (%d steps)", source, len(sc.Steps))

	report, runErr := scenario.Run(ctx, sc, stack)

	finished := auditlog.NewEvent(auditlog.EventScenarioFinished, "ok",
		auditlog.WithSource(source), auditlog.WithCount(stack.Count()))
	if runErr != nil {
		finished.Message = runErr.Error()
		finished.Level = "error"
		log.ErrorLog.Printf("simulate: %s: %v", source, runErr)
	}
	journal.Emit(finished)

	if report != nil {
		if !opts.Quiet {
			if err := writeSteps(out, report); err != nil {
				return err
			}
		}
		if err := devtools.WriteTable(out, report.Final); err != nil {
			return err
		}
	}
	if opts.Metrics {
		if err := metrics.Write(out, reg); err != nil {
			return err
		}
	}
	return runErr
}

func writeSteps(w io.Writer, report *scenario.Report) error {
	if report.Name != "" {
		fmt.Fprintf(w, "scenario: %s\n", report.Name)
	}
	rows := make([][]string, len(report.Steps))
	for i, s := range report.Steps {
		closed, errText := "", ""
		if s.Action == "escape" {
			closed = strconv.FormatBool(s.Closed)
		}
		if s.Err != nil {
			errText = s.Err.Error()
		}
		top := s.Top
		if top == "" {
			top = "-"
		}
		rows[i] = []string{
			strconv.Itoa(s.Index),
			s.Action,
			closed,
			strings.Join(s.Fired, ","),
			top,
			strconv.Itoa(s.Count),
			errText,
		}
	}
	return writeTable(w, []string{"STEP", "ACTION", "CLOSED", "FIRED", "TOP", "COUNT", "ERROR"}, rows)
}

// NewSimulateCmd returns the `simulate` command.
func NewSimulateCmd() *cobra.Command {
	var (
		auditFlag   string
		metricsFlag bool
		quietFlag   bool
	)
	simulateCmd := &cobra.Command{
		Use:          "simulate <scenario.yaml>",
		Short:        "run a layer scenario headlessly and print the results",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			opts := SimulateOptions{
				AuditDB:  cfg.AuditDB,
				Metrics:  cfg.Metrics,
				Quiet:    quietFlag,
				Mode:     cfg.Mode,
				DebugKey: cfg.DebugKey,
			}
			if cmd.Flags().Changed("audit") {
				opts.AuditDB = auditFlag
				if auditFlag == auditOff {
					opts.AuditDB = ""
				}
			}
			if cmd.Flags().Changed("metrics") {
				opts.Metrics = metricsFlag
			}
			return executeSimulate(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}
	simulateCmd.Flags().StringVar(&auditFlag, "audit", "", `sqlite journal path (defaults to audit_db from config; "none" disables)`)
	simulateCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "print prometheus metrics after the run")
	simulateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "only print the final layer table")
	return simulateCmd
}
