package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rcliao/d6calc/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries",
		Run:   runPrune,
	}

	cmd.Flags().String("older-than", "", "Delete entries older than an age, e.g. 7d, 24h, 30m")
	cmd.Flags().Bool("all", false, "Delete every entry (irreversible)")

	RootCmd.AddCommand(cmd)
}

func runPrune(cmd *cobra.Command, args []string) {
	olderThan, _ := cmd.Flags().GetString("older-than")
	all, _ := cmd.Flags().GetBool("all")

	if olderThan == "" && !all {
		exitErr("prune", fmt.Errorf("one of --older-than or --all is required"))
	}

	p := store.PruneParams{All: all}
	if olderThan != "" {
		age, err := parseAge(olderThan)
		if err != nil {
			exitErr("prune", err)
		}
		p.Before = time.Now().Add(-age)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Prune(cmd.Context(), p)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"deleted":%d}`+"\n", n)
}

// parseAge parses an age string like "7d", "24h", "30m" into a time.Duration.
var ageRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseAge(s string) (time.Duration, error) {
	m := ageRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid age %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
