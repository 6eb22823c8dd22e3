// Command umadump extracts assets and master-data from the game
// client's local storage.
package main

import (
	"fmt"
	"os"

	"github.com/uma-tools/umadump/internal/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
