package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/grid-rl/trajgen/npz"
)

func InspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <shard.npz>",
		Short: "Print the fields and shapes of a shard file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := npz.Read(args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				t := fields[name]
				fmt.Printf("%-16s shape=%v elements=%d\n", name, t.Shape, t.Numel())
			}
			return nil
		},
	}
	return cmd
}
