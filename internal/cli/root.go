// Package cli implements the d6calc CLI commands.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/rcliao/d6calc/internal/compute"
	"github.com/rcliao/d6calc/internal/config"
	"github.com/rcliao/d6calc/internal/session"
	"github.com/rcliao/d6calc/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	formatFlag string
	latestOnly bool

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "d6calc",
	Short: "Send hand-entered D6 results to a compute service",
	Long: "Type your D6 results and a spell level, submit them to a compute service and read back the answer.\n" +
		"The service is reached over HTTP ($D6CALC_COMPUTE_URL) or as a local command ($D6CALC_COMPUTE_CMD).",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		if latestOnly {
			c.LatestOnly = true
		}
		cfg = c
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Journal path (default: $D6CALC_DB or ~/.d6calc/journal.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVar(&latestOnly, "latest-only", false, "Ignore responses to superseded submissions")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// openSession wires a session to the configured service and, when enabled,
// the journal. The returned func releases both.
func openSession(logger *log.Logger) (*session.Session, func(), error) {
	svc, err := compute.FromConfig(cfg.Compute)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if cfg.LatestOnly {
		opts = append(opts, session.WithLatestOnly())
	}

	var st *store.SQLiteStore
	if cfg.Journal {
		st, err = openStore()
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		opts = append(opts, session.WithJournal(st))
	}

	sess := session.New(svc, opts...)
	return sess, func() {
		sess.Close()
		if st != nil {
			st.Close()
		}
	}, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
