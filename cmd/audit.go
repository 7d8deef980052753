package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kastheco/layerstack/config"
	"github.com/kastheco/layerstack/config/auditlog"
	"github.com/spf13/cobra"
)

const auditTimeFormat = "2006-01-02 15:04:05.000"

// executeAudit prints journal rows matching filter, newest first.
func executeAudit(logger auditlog.Logger, filter auditlog.QueryFilter, out io.Writer) error {
	events, err := logger.Query(filter)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		_, err := fmt.Fprintln(out, "no audit events")
		return err
	}
	rows := make([][]string, len(events))
	for i, e := range events {
		layerCol := e.LayerID
		if e.LayerKind != "" {
			layerCol = e.LayerKind + " " + e.LayerID
		}
		rows[i] = []string{
			e.Timestamp.Local().Format(auditTimeFormat),
			e.Kind.String(),
			e.Source,
			strings.TrimSpace(layerCol),
			strconv.Itoa(e.Priority),
			strconv.Itoa(e.Count),
			e.Level,
			e.Message,
		}
	}
	return writeTable(out, []string{"TIME", "KIND", "SOURCE", "LAYER", "PRIORITY", "COUNT", "LEVEL", "MESSAGE"}, rows)
}

func parseKinds(raw []string) []auditlog.EventKind {
	var kinds []auditlog.EventKind
	for _, r := range raw {
		for _, k := range strings.Split(r, ",") {
			if k = strings.TrimSpace(k); k != "" {
				kinds = append(kinds, auditlog.EventKind(k))
			}
		}
	}
	return kinds
}

// NewAuditCmd returns the `audit` command.
func NewAuditCmd() *cobra.Command {
	var (
		dbFlag     string
		limitFlag  int
		kindFlag   []string
		sourceFlag string
	)
	auditCmd := &cobra.Command{
		Use:          "audit",
		Short:        "list recorded layer events",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := dbFlag
			if dbPath == "" {
				dbPath = config.LoadConfig().AuditDB
			}
			if dbPath == "" {
				return fmt.Errorf("no audit database: set audit_db in %s or pass --db", config.ConfigFileName)
			}
			logger, err := auditlog.NewSQLiteLogger(dbPath)
			if err != nil {
				return err
			}
			defer logger.Close()

			return executeAudit(logger, auditlog.QueryFilter{
				Source: sourceFlag,
				Kinds:  parseKinds(kindFlag),
				Limit:  limitFlag,
			}, cmd.OutOrStdout())
		},
	}
	auditCmd.Flags().StringVar(&dbFlag, "db", "", "sqlite journal path (defaults to audit_db from config)")
	auditCmd.Flags().IntVarP(&limitFlag, "limit", "n", 50, "maximum rows to show (capped at 500)")
	auditCmd.Flags().StringSliceVar(&kindFlag, "kind", nil, "only show these kinds (e.g. layer_closed,layer_close_vetoed)")
	auditCmd.Flags().StringVar(&sourceFlag, "source", "", "only show events from this scenario file")
	return auditCmd
}
