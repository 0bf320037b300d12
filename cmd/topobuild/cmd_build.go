package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/topobuild/pkg/builder"
	"github.com/newtron-network/topobuild/pkg/cli"
	"github.com/newtron-network/topobuild/pkg/inventory"
	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/record"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/util"
)

var (
	workbookPath  string
	inventoryPath string
	outputFormat  string
	outputPath    string
	lagMode       string
	skipMalformed bool
	switchesGroup string
	metricsFile   string
	buildTimeout  time.Duration

	// CONFIG_DB seeding
	seedHost    string
	seedGroups  []string
	configDB    string
	sshHost     string
	sshUser     string
	sshPassword string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the device model from a workbook",
	Long: `Build loads every table of the workbook into the inventory and prints
the resulting device model.

The inventory lists the hosts, groups and interfaces the tables may refer
to. Interfaces of one host can instead be read from the device's CONFIG_DB:

  topobuild build -w design.yaml -i inventory.yaml
  topobuild build -w design/ --seed-host leaf1 --configdb 127.0.0.1:6379
  topobuild build -w design/ --seed-host leaf1 --ssh-host 10.0.0.11 --ssh-user admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runBuild(cmd.Context())
		if res != nil {
			printReports(cmd.ErrOrStderr(), res.loader.Reports())
		}
		if err != nil {
			return err
		}
		return writeModel(cmd.OutOrStdout(), res.inv)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a workbook without printing the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runBuild(cmd.Context())
		if res != nil {
			printReports(cmd.OutOrStdout(), res.loader.Reports())
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Green("Workbook is valid."))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, validateCmd} {
		f := cmd.Flags()
		f.StringVarP(&workbookPath, "workbook", "w", "", "Workbook: CSV directory or YAML file")
		f.StringVarP(&inventoryPath, "inventory", "i", "", "Inventory YAML file")
		f.StringVar(&lagMode, "lag-mode", "", "Default LAG member mode (active, passive, on, auto, desirable)")
		f.BoolVar(&skipMalformed, "skip-malformed", false, "Skip malformed rows instead of failing")
		f.StringVar(&switchesGroup, "switches-group", "", "Group that receives VLAN definitions")
		f.StringVar(&metricsFile, "metrics-file", "", "Write build metrics in Prometheus text format")
		f.DurationVar(&buildTimeout, "timeout", 0, "Abort the build after this long (checked between tables)")

		f.StringVar(&seedHost, "seed-host", "", "Seed this host's interfaces from CONFIG_DB")
		f.StringSliceVar(&seedGroups, "seed-groups", nil, "Groups of the seeded host")
		f.StringVar(&configDB, "configdb", "", "CONFIG_DB Redis address (default 127.0.0.1:6379)")
		f.StringVar(&sshHost, "ssh-host", "", "Reach CONFIG_DB through an SSH tunnel to this host")
		f.StringVar(&sshUser, "ssh-user", "", "SSH user for the tunnel")
	}
	buildCmd.Flags().StringVarP(&outputFormat, "output", "o", cli.FormatJSON, "Output format: json or yaml")
	buildCmd.Flags().StringVar(&outputPath, "out", "", "Write the model to a file instead of stdout")
}

type buildResult struct {
	loader *builder.Loader
	inv    *inventory.Inventory
}

// runBuild resolves flags against settings, prepares the inventory and runs
// every table load
func runBuild(ctx context.Context) (*buildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, buildTimeout)
		defer cancel()
	}

	wb := firstNonEmpty(workbookPath, userSettings.Workbook)
	if wb == "" {
		return nil, fmt.Errorf("workbook required: use -w <path> or 'topobuild settings set workbook <path>'")
	}
	src, err := table.Open(wb)
	if err != nil {
		return nil, err
	}

	inv, err := loadInventory(ctx)
	if err != nil {
		return nil, err
	}

	mode := userSettings.GetLagMode()
	if lagMode != "" {
		mode = model.LagMode(strings.ToLower(lagMode))
		if !mode.Valid() {
			return nil, fmt.Errorf("unknown LAG mode %q", lagMode)
		}
	}
	policy := record.AbortOnMalformed
	if skipMalformed || userSettings.SkipMalformed {
		policy = record.SkipMalformed
	}

	metrics := builder.NewMetrics()
	opts := []builder.Option{
		builder.WithDefaultLagMode(mode),
		builder.WithDecodePolicy(policy),
		builder.WithSwitchesGroup(firstNonEmpty(switchesGroup, userSettings.GetSwitchesGroup())),
		builder.WithMetrics(metrics),
		builder.WithWorkbook(wb),
		builder.WithUser(currentUser()),
	}
	if auditLogger != nil {
		opts = append(opts, builder.WithAuditLogger(auditLogger))
	}

	l := builder.NewLoader(src, inv, opts...)
	util.WithField("run_id", l.RunID()).Infof("Building %s", wb)
	buildErr := l.LoadAll(ctx)

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			util.Warnf("Writing metrics: %v", err)
		}
	}
	return &buildResult{loader: l, inv: inv}, buildErr
}

// loadInventory reads the inventory file, then seeds one host from
// CONFIG_DB when asked to
func loadInventory(ctx context.Context) (*inventory.Inventory, error) {
	path := firstNonEmpty(inventoryPath, userSettings.Inventory)
	inv := inventory.New()
	if path != "" {
		var err error
		if inv, err = inventory.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if seedHost == "" {
		if path == "" {
			return nil, fmt.Errorf("inventory required: use -i <file> or --seed-host with CONFIG_DB access")
		}
		return inv, nil
	}

	opts := inventory.ConfigDBOptions{Addr: configDB, SSHHost: sshHost, SSHUser: sshUser}
	if sshHost != "" {
		pass, err := sshPass()
		if err != nil {
			return nil, err
		}
		opts.SSHPass = pass
	}
	db, err := inventory.DialConfigDB(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := inv.SeedFromConfigDB(ctx, db.Client(), seedHost, seedGroups...); err != nil {
		return nil, fmt.Errorf("seeding %s from CONFIG_DB: %w", seedHost, err)
	}
	return inv, nil
}

// sshPass reads the tunnel password from TOPOBUILD_SSH_PASS or prompts for it
func sshPass() (string, error) {
	if sshPassword != "" {
		return sshPassword, nil
	}
	if p := os.Getenv("TOPOBUILD_SSH_PASS"); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("SSH password required: set TOPOBUILD_SSH_PASS")
	}
	fmt.Fprintf(os.Stderr, "%s@%s's password: ", sshUser, sshHost)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	sshPassword = string(b)
	return sshPassword, nil
}

func writeModel(stdout io.Writer, inv *inventory.Inventory) error {
	w := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return cli.Encode(w, outputFormat, inv.Snapshot())
}

func printReports(w io.Writer, reports []builder.TableReport) {
	t := cli.NewTableTo(w, "TABLE", "STATUS", "ROWS", "APPLIED", "SKIPPED", "DURATION")
	for _, r := range reports {
		t.Row(r.Table, cli.Status(r.Status),
			fmt.Sprint(r.Rows), fmt.Sprint(r.Applied), fmt.Sprint(r.Skipped),
			r.Duration.Round(time.Microsecond).String())
	}
	t.Flush()
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
