package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topobuild/pkg/audit"
	"github.com/newtron-network/topobuild/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View audit logs of workbook builds.

Every build writes one event per table load plus one for the whole build,
grouped by run ID. Builds are listed oldest first, each followed by its
table loads in load order. Auditing is enabled with --audit-log or the audit_log
setting.

Examples:
  topobuild audit list --last 24h
  topobuild audit list --run <run-id>
  topobuild audit list --table l3_links --failures`,
}

var (
	auditRun      string
	auditUser     string
	auditTable    string
	auditLast     string
	auditLimit    int
	auditFailures bool
	auditFormat   string
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audited builds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditLogger == nil {
			return fmt.Errorf("audit log not configured: use --audit-log <file> or 'topobuild settings set audit_log <file>'")
		}
		filter := audit.Filter{
			RunID:       auditRun,
			User:        auditUser,
			Table:       auditTable,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		runs, err := auditLogger.Runs(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if auditFormat != "" {
			return cli.Encode(cmd.OutOrStdout(), auditFormat, runs)
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No audit events found")
			return nil
		}

		t := cli.NewTableTo(cmd.OutOrStdout(), "TIMESTAMP", "RUN", "USER", "TABLE", "ROWS", "DURATION", "STATUS")
		for _, run := range runs {
			id := run.ID
			if len(id) > 8 {
				id = id[:8]
			}
			if b := run.Build; b != nil {
				t.Row(b.Timestamp.Format("2006-01-02 15:04:05"), id, run.User(), "(build)",
					fmt.Sprintf("%d/%d", b.Applied, b.Rows), b.Duration.Round(time.Millisecond).String(), eventStatus(b))
			} else if !filterPrunesBuild(filter) {
				t.Row(run.Started().Format("2006-01-02 15:04:05"), id, run.User(), "(build)", "-", "-", cli.Status("incomplete"))
			}
			for _, e := range run.Tables {
				t.Row("", "", "", e.Table,
					fmt.Sprintf("%d/%d", e.Applied, e.Rows), e.Duration.Round(time.Millisecond).String(), eventStatus(e))
			}
		}
		t.Flush()
		return nil
	},
}

func eventStatus(e *audit.Event) string {
	if e.Success {
		return cli.Status("ok")
	}
	return cli.Status("failed")
}

// filterPrunesBuild reports whether the filter hides build events, in which
// case a missing one does not mean the run is incomplete.
func filterPrunesBuild(f audit.Filter) bool {
	return f.Table != "" || f.FailureOnly || f.SuccessOnly || (f.Operation != "" && f.Operation != audit.OperationBuild)
}

func init() {
	auditListCmd.Flags().StringVar(&auditRun, "run", "", "Filter by run ID")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditTable, "table", "", "Filter by table")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum number of recent builds to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")
	auditListCmd.Flags().StringVarP(&auditFormat, "output", "o", "", "Output format: json or yaml")

	auditCmd.AddCommand(auditListCmd)
}
