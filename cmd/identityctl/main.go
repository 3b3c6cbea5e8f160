package main

import (
	"os"

	"github.com/pilab-dev/shadow-identity/cmd/identityctl/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
