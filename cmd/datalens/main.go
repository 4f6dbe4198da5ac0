package main

import (
	"fmt"
	"os"

	"github.com/holtland/datalens/internal/cli"
	"github.com/holtland/datalens/internal/core"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", core.FormatUserError(core.MapError(err)))
		os.Exit(1)
	}
}
