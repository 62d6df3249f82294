// Command server starts the Kasirin API server directly, without the CLI.
package main

import (
	"fmt"
	"os"

	"github.com/kasirin/kasirin/internal/server"
)

func main() {
	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
