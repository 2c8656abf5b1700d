package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"synaptic/internal/chem"
	"synaptic/internal/engine"
)

var thinkCmd = &cobra.Command{
	Use:   "think [text]",
	Short: "Run one interactive turn against the graph",
	Long: "Extracts key terms from the text, spreads activation from them,\n" +
		"reinforces their co-occurrence, and prints the woven response,\n" +
		"or reports that the graph had nothing to say.",
	Args: cobra.MinimumNArgs(1),
	RunE: runThink,
}

func runThink(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	terms := extractKeyTerms(text)
	if len(terms) == 0 {
		fmt.Println("(no meaningful terms in input)")
		return nil
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

	chemistry, err := chem.Load(db)
	if err != nil {
		return fmt.Errorf("load chemistry: %w", err)
	}

	eng := engine.New(db, chemistry)
	defer eng.Stop()

	reply, answered, err := eng.Respond(terms, text)
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	if !answered {
		fmt.Printf("(no answer; learned %d terms: %s)\n", len(terms), strings.Join(terms, ", "))
		return nil
	}
	fmt.Println(reply)
	return nil
}
