package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assessflow",
	Short: "Assessment export transformation pipeline",
	Long: `assessflow transforms raw assessment exports into analytical frames.

One run reads the raw export table and the assessment dictionary from the
table store and replaces the long, wide and year-over-year frames plus the
rejected-rows report.

Examples:
  assessflow run
  assessflow run --policy config/policy.yaml
  assessflow ingest --file export.xlsx --table raw_assessments
  assessflow dictionary validate`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "run policy file (default is PIPELINE_POLICY or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
