package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/grid-rl/trajgen/commands"
)

func main() {
	// optional .env with e.g. TRAJGEN_ARTIFACT_DIR
	godotenv.Load()

	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
