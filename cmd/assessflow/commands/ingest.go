package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brightpath/assessflow/internal/ingest"
)

var (
	// Ingest flags
	ingestFile  string
	ingestTable string
)

// ingestCmd loads an export file into a named table in the store.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load an export file into the table store",
	Long: `Reads a scraper export (.xlsx or .csv, header row first) and
replaces the named table in the store with its contents. Used for backfills
and local testing in place of the external export producer.

Example:
  assessflow ingest --file export.xlsx --table raw_assessments
  assessflow ingest --file dictionary.csv --table assessment_dictionary`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "export file to load (.xlsx or .csv)")
	ingestCmd.Flags().StringVar(&ingestTable, "table", "", "destination table name")
	_ = ingestCmd.MarkFlagRequired("file")
	_ = ingestCmd.MarkFlagRequired("table")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, _, err := setup()
	if err != nil {
		return err
	}

	table, err := ingest.LoadFile(ingestFile, ingestTable)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tableStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := tableStore.Replace(ctx, table); err != nil {
		return fmt.Errorf("store table %q: %w", ingestTable, err)
	}

	log.Infof("ingested %d rows into %q", table.RowCount(), ingestTable)
	return nil
}
