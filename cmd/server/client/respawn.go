package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/endguard/internal/handlers/api/v1alpha1"
)

var (
	respawnDelay    int
	respawnTemplate string
	respawnLoot     string
)

var respawnCmd = &cobra.Command{
	Use:   "respawn [world]",
	Short: "Arm a dragon respawn",
	Long: `Arm a respawn countdown in a world. Examples:

  respawn world_the_end --delay 30
  respawn world_the_end --template inferno --loot jackpot`,
	Args: cobra.ExactArgs(1),
	RunE: startRespawn,
}

func init() {
	respawnCmd.Flags().IntVar(&respawnDelay, "delay", 10, "Countdown in seconds")
	respawnCmd.Flags().StringVar(&respawnTemplate, "template", "", "Template id; empty picks one by weight")
	respawnCmd.Flags().StringVar(&respawnLoot, "loot", "", "Loot table for the next death only")
}

func startRespawn(cmd *cobra.Command, args []string) error {
	resp, err := call(cmd, (*v1alpha1.EncounterClient).StartRespawn, "start respawn", map[string]any{
		"world":         args[0],
		"delay_seconds": respawnDelay,
		"template_id":   respawnTemplate,
		"loot_table_id": respawnLoot,
	})
	if err != nil {
		return err
	}

	if resp["started"].GetBoolValue() {
		fmt.Fprintf(cmd.OutOrStdout(), "Respawn armed in %s (%ds)\n", args[0], respawnDelay)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Respawn rejected in %s; see server log for the reason\n", args[0])
	}
	return nil
}
