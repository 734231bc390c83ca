package main

import (
	"os"

	"github.com/dshills/inspect/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
