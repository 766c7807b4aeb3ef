package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/srg/bletap/pkg/blelog"
)

// flagsCmd lists the log categories
var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List log categories",
	Long: `List every category that can be passed to --flags.

Names are case-insensitive and may be written in CamelCase or kebab-case.
The keywords "all", "default" and "none" are also accepted.`,
	Args: cobra.NoArgs,
	RunE: runFlags,
}

func runFlags(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVALUE\tDEFAULT")

	for _, name := range blelog.FlagNames() {
		flag, err := blelog.ParseFlags(name)
		if err != nil {
			return err
		}
		def := ""
		if blelog.DefaultFlags.Has(flag) {
			def = "yes"
		}
		fmt.Fprintf(w, "%s\t0x%03x\t%s\n", name, uint32(flag), def)
	}
	return w.Flush()
}
