package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightpath/assessflow/internal/dictionary"
)

// dictionaryCmd groups dictionary tooling.
var dictionaryCmd = &cobra.Command{
	Use:   "dictionary",
	Short: "Assessment dictionary tools",
}

// dictionaryValidateCmd loads the dictionary table and reports its shape.
var dictionaryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the assessment dictionary table",
	Long: `Loads the dictionary table from the store and fails on the same
conditions a pipeline run would: duplicate question ids with conflicting
metadata, missing required fields, malformed bounds.

Example:
  assessflow dictionary validate`,
	RunE: runDictionaryValidate,
}

func init() {
	rootCmd.AddCommand(dictionaryCmd)
	dictionaryCmd.AddCommand(dictionaryValidateCmd)
}

func runDictionaryValidate(cmd *cobra.Command, args []string) error {
	cfg, log, policy, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tableStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	table, err := tableStore.Get(ctx, policy.Tables.Dictionary)
	if err != nil {
		return fmt.Errorf("read dictionary table %q: %w", policy.Tables.Dictionary, err)
	}

	dict, err := dictionary.Load(table)
	if err != nil {
		return err
	}

	log.Infof("dictionary ok: %d questions across %d categories", dict.Len(), len(dict.Categories()))
	for _, cat := range dict.Categories() {
		log.Infof("  %s: %d questions", cat, len(dict.CategoryQuestions(cat)))
	}
	return nil
}
