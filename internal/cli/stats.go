package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"synaptic/internal/chem"
)

var statsCmd = &cobra.Command{
	Use:   "stats [label]",
	Short: "Show graph and chemistry status",
	Long: "Prints the graph snapshot (counts, density, most-fired node) and the\n" +
		"current neurochemistry. With a label, also lists its strongest\n" +
		"outgoing connections.",
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: config load failed (%v), using defaults\n", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	stats, err := db.GraphStats()
	if err != nil {
		return fmt.Errorf("graph stats: %w", err)
	}

	fmt.Printf("nodes:       %d\n", stats.Nodes)
	fmt.Printf("synapses:    %d\n", stats.Synapses)
	fmt.Printf("avg weight:  %.3f\n", stats.AvgWeight)
	fmt.Printf("density:     %.4f\n", stats.Density)
	if stats.MostFiredLabel != "" {
		fmt.Printf("most fired:  %s (%d times)\n", stats.MostFiredLabel, stats.MostFiredCount)
	}

	top, err := db.MostFiredConcepts(5)
	if err != nil {
		return fmt.Errorf("most fired: %w", err)
	}
	if len(top) > 0 {
		fmt.Println("\ntop concepts:")
		for _, n := range top {
			fmt.Printf("  %-24s fired %d\n", n.Label, n.FireCount)
		}
	}

	chemistry, err := chem.Load(db)
	if err != nil {
		return fmt.Errorf("load chemistry: %w", err)
	}
	snap := chemistry.Snapshot()
	fmt.Printf("\nchemistry:   dop %.2f  ser %.2f  nor %.2f  cor %.2f  oxy %.2f\n",
		snap.Dopamine, snap.Serotonin, snap.Norepinephrine, snap.Cortisol, snap.Oxytocin)
	fmt.Printf("tone:        %s\n", snap.Tone)

	if len(args) == 1 {
		conns, err := db.StrongestConnections(args[0], 10)
		if err != nil {
			return fmt.Errorf("connections: %w", err)
		}
		fmt.Printf("\n%s:\n", args[0])
		if len(conns) == 0 {
			fmt.Println("  (no outgoing connections)")
		}
		for _, c := range conns {
			fmt.Printf("  → %-24s %.3f\n", c.Label, c.Weight)
		}
	}
	return nil
}
