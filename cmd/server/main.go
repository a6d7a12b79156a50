// Command endguard serves, simulates and queries dragon encounters
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/endguard/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "endguard",
	Short: "Dragon encounter server",
	Long: `Endguard runs the dragon fight of end worlds: respawn countdowns, death
animations, loot generation and templated encounter variants.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to the YAML config file")
	flags.StringVar(&definitionsDir, "definitions", "", "Definitions directory (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd, simulateCmd, client.ClientCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
