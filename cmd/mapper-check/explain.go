package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"object-mapper/internal/mapping"
)

var explainCmd = &cobra.Command{
	Use:   "explain <file>",
	Short: "List the rules of a mapping file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mf, err := mapping.LoadFile(args[0])
		if err != nil {
			return err
		}

		mapping.NormalizeMappingFile(mf)
		explain(cmd.OutOrStdout(), mf)

		return nil
	},
}

func explain(w io.Writer, mf *mapping.MappingFile) {
	for _, id := range slices.Sorted(maps.Keys(mf.Identifiers)) {
		fmt.Fprintf(w, "identify %s by %s\n", id, mf.Identifiers[id])
	}

	for _, e := range mf.Enums {
		for _, p := range e.Pairs {
			fmt.Fprintf(w, "enum %s.%s -> %s.%s\n", e.Source, p[0], e.Target, p[1])
		}
	}

	for _, c := range mf.Creators {
		fmt.Fprintf(w, "create %s with %s\n", strings.TrimSpace(c.Type+" "+c.Path), c.Func)
	}

	for _, tm := range mf.TypeMappings {
		fmt.Fprintf(w, "\n%s -> %s", tm.Source, tm.Target)

		if len(tm.RuleSets) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(tm.RuleSets, ", "))
		}

		fmt.Fprintln(w)

		if tm.Constructor != nil {
			fmt.Fprintf(w, "  new %s(%s)\n", tm.Constructor.Func, strings.Join(tm.Constructor.Params, ", "))
		}

		for i := range tm.Fields {
			fm := &tm.Fields[i]

			switch {
			case fm.Parameter != "":
				fmt.Fprintf(w, "  param %s <- %s\n", fm.Parameter, strings.TrimPrefix(fm.String(), " <- "))
			case fm.Sequential:
				fmt.Fprintf(w, "  %s (then)\n", fm)
			default:
				fmt.Fprintf(w, "  %s\n", fm)
			}
		}

		for _, ig := range tm.Ignore {
			fmt.Fprintf(w, "  %s ignored\n", ig)
		}

		for _, d := range tm.Derived {
			fmt.Fprintf(w, "  %s -> %s when derived\n", d.Source, d.Target)
		}

		if tm.OnError != "" {
			fmt.Fprintf(w, "  on error %s\n", tm.OnError)
		}
	}
}
