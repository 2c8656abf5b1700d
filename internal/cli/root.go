package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "synaptic",
	Short: "A synaptic knowledge graph that learns from what it hears",
	Long: "Synaptic maintains a weighted concept graph with spreading activation,\n" +
		"Hebbian reinforcement, decay, and a neuromodulated parameter state.\n" +
		"Single Go binary backed by SQLite.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(thinkCmd)
	rootCmd.AddCommand(teachCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(decayCmd)
}
