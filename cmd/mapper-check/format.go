package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"object-mapper/internal/mapping"
)

var write bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>...",
	Short: "Rewrite mapping files in canonical form",
	Long: `fmt expands the 121 shorthand into field entries and prints the
canonical YAML of each file. With -w the files are rewritten in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			mf, err := mapping.LoadFile(path)
			if err != nil {
				return err
			}

			mapping.NormalizeMappingFile(mf)

			if write {
				if err := mapping.WriteFile(mf, path); err != nil {
					return err
				}

				continue
			}

			data, err := mapping.Marshal(mf)
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", path, err)
			}

			if len(args) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			}

			fmt.Fprint(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the files instead of printing them")
}
