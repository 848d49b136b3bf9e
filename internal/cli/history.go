package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/d6calc/internal/model"
	"github.com/rcliao/d6calc/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled dispatches, newest first",
		Run:   runHistory,
	}

	cmd.Flags().StringP("session", "s", "", "Filter by session id")
	cmd.Flags().String("status", "", "Filter by status: pending, completed, failed, discarded")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	if status != "" && !model.ValidStatuses[status] {
		exitErr("history", fmt.Errorf("unknown status %q", status))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	list, err := s.List(cmd.Context(), store.ListParams{
		Session: sessionID,
		Status:  status,
		Limit:   limit,
	})
	if err != nil {
		exitErr("history", err)
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(b))
		return
	}
	for _, d := range list {
		fmt.Println(historyLine(d))
	}
}

func historyLine(d model.Dispatch) string {
	out := d.Result
	if d.Error != "" {
		out = "error: " + d.Error
	}
	return fmt.Sprintf("%s  %s  lv%s  %-9s  %s  -> %s",
		d.ID, d.CreatedAt.Local().Format(time.DateTime), d.InputLv, d.Status, d.InputD6, out)
}
