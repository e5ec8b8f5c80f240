// Command coursemate indexes course documents and answers questions about them.
package main

import (
	"os"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
