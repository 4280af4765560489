package main

import (
	"os"

	"github.com/njbennett/knecht/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
