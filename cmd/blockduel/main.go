// blockduel is a head-to-head falling-block duel server.
//
// Usage:
//
//	blockduel serve              - Start the match relay API server
//	blockduel simulate           - Run a headless AI-vs-AI match
//
// Global flags:
//
//	--config <path>  - Path to YAML config (default: search standard locations)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfigPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockduel",
	Short: "Blockduel - competitive falling-block match server",
	Long: `Blockduel runs head-to-head falling-block matches between two clients
that each simulate their own board and synchronize through lock events.

Available commands:
  serve     - Start the HTTP match relay
  simulate  - Play an AI-vs-AI match headlessly

Examples:
  blockduel serve
  blockduel serve --config ./configs/blockduel.yaml
  blockduel simulate --tier-a 5 --tier-b 3`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}
