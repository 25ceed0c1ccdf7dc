package main

import (
	"os"

	"pixpal/cli"
)

func main() {
	if err := cli.RootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
