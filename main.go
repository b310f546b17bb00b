// The main package for the releasewatcher executable.
package main

import (
	"github.com/XXcipherX/tiny11-automated/cmd"
)

func main() {
	cmd.Execute()
}
