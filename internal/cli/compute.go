package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rcliao/d6calc/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compute [dice]",
		Short: "Submit one dice sequence and print the result",
		Long:  "Submit one dice sequence. Dice can be a positional arg or piped via stdin, e.g. `d6calc compute 123456 -l 2`.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runCompute,
	}

	cmd.Flags().IntP("level", "l", 0, "Spell level (0-8)")
	cmd.Flags().BoolP("verbose", "v", false, "Log dispatch diagnostics to stderr")

	RootCmd.AddCommand(cmd)
}

func runCompute(cmd *cobra.Command, args []string) {
	lv, _ := cmd.Flags().GetInt("level")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Get dice: positional arg first, then check stdin
	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			text = strings.TrimRight(string(b), "\r\n")
		}
	}

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "d6calc: ", log.LstdFlags)
	}

	sess, closeSession, err := openSession(logger)
	if err != nil {
		exitErr("compute", err)
	}
	defer closeSession()

	sess.SetRaw(text)
	sess.SetLevel(lv)
	sess.Submit()

	snap, err := sess.Settled(cmd.Context())
	if err != nil {
		exitErr("compute", err)
	}

	v := render.Project(snap)
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Text(v))
}
