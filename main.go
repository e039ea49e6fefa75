package main

import (
	"os"

	"github.com/creatorstation/tracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
