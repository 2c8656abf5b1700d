package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"synaptic/internal/engine"
)

var decayCmd = &cobra.Command{
	Use:   "decay [rate]",
	Short: "Run one synaptic decay cycle",
	Long:  `Weakens every synapse by the given rate (default 0.01) and prunes those below the floor.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDecay,
}

func runDecay(cmd *cobra.Command, args []string) error {
	rate := engine.DefaultDecayRate
	if len(args) == 1 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("rate %q: %w", args[0], err)
		}
		rate = v
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: config load failed (%v), using defaults\n", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	pruned, err := db.DecayAll(rate)
	if err != nil {
		return fmt.Errorf("decay: %w", err)
	}
	orphans, err := db.PruneOrphans()
	if err != nil {
		return fmt.Errorf("prune orphans: %w", err)
	}

	fmt.Printf("pruned %d synapses, %d orphan nodes\n", pruned, orphans)
	return nil
}
