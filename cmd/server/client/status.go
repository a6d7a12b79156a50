package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
)

var statusCmd = &cobra.Command{
	Use:   "status [world]",
	Short: "Show the encounter state of a world",
	Args:  cobra.ExactArgs(1),
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	f, err := call(cmd, (*v1alpha1.EncounterClient).GetWorldStatus, "get world status",
		map[string]any{"world": args[0]})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "World: %s\n", f["world"].GetStringValue())
	fmt.Fprintf(out, "  State: %s\n", f["state"].GetStringValue())
	if v := f["active_template"].GetStringValue(); v != "" {
		fmt.Fprintf(out, "  Active template: %s\n", v)
	}
	if v := f["previous_template"].GetStringValue(); v != "" {
		fmt.Fprintf(out, "  Previous template: %s\n", v)
	}
	if v := f["respawning_template"].GetStringValue(); v != "" {
		fmt.Fprintf(out, "  Respawning template: %s\n", v)
	}
	if secs := int(f["seconds_until_respawn"].GetNumberValue()); secs >= 0 {
		fmt.Fprintf(out, "  Respawn in: %ds\n", secs)
	}
	if v := f["last_defeated_dragon"].GetStringValue(); v != "" {
		fmt.Fprintf(out, "  Last defeated dragon: %s\n", v)
	}

	return nil
}
