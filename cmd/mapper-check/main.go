// Command mapper-check checks and normalizes YAML mapping files.
//
// Mapping files name the types and funcs they use. Those are registered by
// the program loading the file, so the checks here are structural: unknown
// type and func names are only reported with --strict.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var strict bool

var rootCmd = &cobra.Command{
	Use:   "mapper-check",
	Short: "Check and normalize object mapping files",
	Long: `mapper-check works on the YAML files configuring object mappings.

Examples:
  mapper-check check mappings/*.yaml
  mapper-check fmt -w mappings/orders.yaml
  mapper-check explain mappings/orders.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Report unknown type and func names")

	rootCmd.AddCommand(checkCmd, fmtCmd, explainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
