package main

import (
	"os"

	"github.com/spherical/pdf-composer/cmd/pdf-composer/commands"
	"github.com/spherical/pdf-composer/cmd/pdf-composer/ui"
)

var (
	version = "1.0.0"
)

func main() {
	if err := commands.Execute(version); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
