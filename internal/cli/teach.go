package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var teachCmd = &cobra.Command{
	Use:   "teach <concept> <associated> [weight]",
	Short: "Teach a directional association between two concepts",
	Long:  `Creates or strengthens the edge concept → associated. Default weight delta is 0.2.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runTeach,
}

func runTeach(cmd *cobra.Command, args []string) error {
	delta := 0.2
	if len(args) == 3 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("weight %q: %w", args[2], err)
		}
		delta = v
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

	syn, err := db.Connect(args[0], args[1], delta, "association")
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	fmt.Printf("%s → %s (weight %.3f)\n", args[0], args[1], syn.Weight)
	return nil
}
