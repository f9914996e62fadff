package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
)

// unresolved are the codes of diagnostics about names only the loading
// program can resolve.
var unresolved = []string{"type_not_found", "func_not_found"}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate mapping files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		invalid := 0

		for _, path := range args {
			diags, err := check(path)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				invalid++

				continue
			}

			for _, d := range diags.All() {
				fmt.Fprintf(out, "%s: %s: %s\n", path, d.Severity, d)
			}

			if !diags.IsValid() {
				invalid++
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d mapping files are invalid", invalid, len(args))
		}

		fmt.Fprintf(out, "%d mapping files ok\n", len(args))

		return nil
	},
}

func check(path string) (*diagnostic.Diagnostics, error) {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	found := mapping.Validate(mf, nil, nil, nil)
	if strict {
		return found, nil
	}

	kept := &diagnostic.Diagnostics{}
	for _, d := range found.All() {
		if !slices.Contains(unresolved, d.Code) {
			kept.Add(d)
		}
	}

	return kept, nil
}
