package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/graph"
)

// graphNextCmd represents the graph next command
var graphNextCmd = &cobra.Command{
	Use:   "next [alias]",
	Short: "Print the next snapshot name and the current graph of an alias",
	Long: `Print "<new> <old>" where <old> is the graph the alias is bound to and
<new> is the name of its next snapshot: the _TS_<millis> suffix of <old>
replaced with the current time, or appended when <old> has none.

The output is meant for loader scripts that create the snapshot and then run
"ngsecctl cutover". The alias must be bound to exactly one graph.

Example:
  read NG_NEW NG_OLD < <(ngsecctl graph next :a-tosc)`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraphNext(cmd, args); err != nil {
			fail("Failed to name next snapshot", err)
		}
	},
}

func init() {
	graphCmd.AddCommand(graphNextCmd)
}

func runGraphNext(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	alias := firstNonEmpty(arg(args, 0), a.cfg.Alias)
	if alias == "" {
		return fmt.Errorf("alias is required (argument or NG_ALIAS)")
	}
	bound, err := a.store().GraphsByAlias(cmd.Context(), alias)
	if err != nil {
		return err
	}
	if len(bound) != 1 {
		return fmt.Errorf("%s is bound to %d graphs, want exactly 1", alias, len(bound))
	}
	fmt.Printf("%s %s\n", graph.NextSnapshot(bound[0], time.Now()), bound[0])
	return nil
}
