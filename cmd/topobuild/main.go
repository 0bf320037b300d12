// Topobuild - Topology Configuration Builder
//
// Compiles a network design workbook (a directory of CSV tables or a YAML
// workbook) into a validated per-device configuration model:
//
//	topobuild build -w design.yaml -i inventory.yaml -o yaml
//	topobuild validate -w design/ -i inventory.yaml
//
// Tables are applied in dependency order: vlan_definitions, physical_links,
// templates_ospf, l3_links, l3_ports, bgp_routers, bgp_neighbors. The first
// failing row stops the build; earlier rows stay applied.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topobuild/pkg/audit"
	"github.com/newtron-network/topobuild/pkg/settings"
	"github.com/newtron-network/topobuild/pkg/util"
	"github.com/newtron-network/topobuild/pkg/version"
)

var (
	// Global option flags
	verbose    bool
	logLevel   string
	jsonLogs   bool
	auditPath  string
	configPath string

	// Global state
	userSettings *settings.Settings
	auditLogger  audit.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "topobuild",
	Short:             "Topology Configuration Builder",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Topobuild compiles network design tables into a validated per-device
configuration model.

  topobuild build -w <workbook> -i <inventory> [-o json|yaml]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		if configPath != "" {
			userSettings, err = settings.LoadFrom(configPath)
		} else {
			userSettings, err = settings.Load()
		}
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if jsonLogs {
			util.SetJSONFormat()
		}
		level := userSettings.GetLogLevel()
		if logLevel != "" {
			level = logLevel
		}
		if verbose {
			level = "debug"
		}
		if err := util.SetLogLevel(level); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}

		if auditPath == "" {
			auditPath = userSettings.AuditLog
		}
		if auditPath != "" {
			fl, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
				MaxSize:    4 * 1024 * 1024,
				MaxBackups: 5,
			})
			if err != nil {
				util.Warnf("Could not initialize audit logging: %v", err)
			} else {
				auditLogger = fl
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if auditLogger != nil {
			return auditLogger.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "Log in JSON format")
	rootCmd.PersistentFlags().StringVar(&auditPath, "audit-log", "", "Audit log file (JSON lines)")
	rootCmd.PersistentFlags().StringVar(&configPath, "settings", "", "Settings file (default ~/.topobuild/settings.json)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "build", Title: "Build Commands:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{buildCmd, validateCmd} {
		cmd.GroupID = "build"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String("topobuild"))
	},
}

// isSettingsOrHelp reports whether cmd runs without settings or logging set up
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "help", "version", "completion":
			return true
		}
	}
	return false
}
