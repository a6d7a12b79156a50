package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [world]",
	Short: "List recent loot generated in a world",
	Args:  cobra.ExactArgs(1),
	RunE:  listHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum entries to show")
}

func listHistory(cmd *cobra.Command, args []string) error {
	resp, err := call(cmd, (*v1alpha1.EncounterClient).ListLootHistory, "list loot history",
		map[string]any{"world": args[0], "limit": historyLimit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	entries := resp["entries"].GetListValue().GetValues()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No loot recorded in %s\n", args[0])
		return nil
	}

	for _, v := range entries {
		e := v.GetStructValue().GetFields()
		fmt.Fprintf(out, "%s  %s  table=%s", e["created_at"].GetStringValue(), e["id"].GetStringValue(), e["table_id"].GetStringValue())
		if killer := e["killer"].GetStringValue(); killer != "" {
			fmt.Fprintf(out, "  killer=%s", killer)
		}
		fmt.Fprintln(out)

		for _, item := range e["items"].GetListValue().GetValues() {
			f := item.GetStructValue().GetFields()
			fmt.Fprintf(out, "    %dx %s\n", int(f["amount"].GetNumberValue()), f["material"].GetStringValue())
		}
		for _, c := range e["commands"].GetListValue().GetValues() {
			fmt.Fprintf(out, "    /%s\n", c.GetStringValue())
		}
		if e["egg_placed"].GetBoolValue() {
			fmt.Fprintln(out, "    dragon egg")
		}
	}

	return nil
}
