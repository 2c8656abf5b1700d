package cli

import (
	"fmt"
	"strings"

	"synaptic/internal/config"
	"synaptic/internal/store"
)

// loadConfig reads the default config file, falling back to defaults.
func loadConfig() (config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default(), err
	}
	return config.Load(path)
}

// openStore resolves the database path from config and opens it.
func openStore(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

// Stop words dropped by the CLI's own key-term filter. The full
// conversational front end does real tokenization before it hits the
// engine; this list only serves the one-shot `think` command.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "i": true, "in": true, "is": true, "it": true,
	"its": true, "my": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "this": true, "to": true, "was": true,
	"what": true, "which": true, "with": true, "you": true, "your": true,
	"el": true, "la": true, "los": true, "las": true, "un": true,
	"una": true, "de": true, "del": true, "en": true, "es": true,
	"que": true, "y": true, "con": true, "por": true, "para": true,
}

// extractKeyTerms lowercases text and drops stop words and short
// tokens. The engine itself never filters; this is CLI glue standing in
// for the external orchestrator's tokenizer.
func extractKeyTerms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') &&
			!strings.ContainsRune("áéíóúüñ", r)
	})

	var terms []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
