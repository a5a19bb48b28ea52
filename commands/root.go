package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	seed    int
	saveDir string
)

// GetRootCommand builds the trajgen command tree.
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "trajgen",
		Short: "Generate maze trajectories and persist them as npz shards",
	}
	rootCommand.PersistentFlags().IntVar(&seed, "seed", 0, "Seed of the run, also embedded in shard filenames")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", defaultArtifactDir(), "Directory for shard files")
	rootCommand.AddCommand(GenerateCommand())
	rootCommand.AddCommand(InspectCommand())
	return rootCommand
}

func defaultArtifactDir() string {
	if dir := os.Getenv("TRAJGEN_ARTIFACT_DIR"); dir != "" {
		return dir
	}
	return "artifacts"
}
