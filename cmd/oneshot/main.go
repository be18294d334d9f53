// Command oneshot answers a single TCP connection with a fixed HTTP
// response and exits.
package main

import (
	"os"

	"github.com/wesleyorama2/oneshot/internal/cli"
)

// Main runs the command line and returns the exit status: 0 only when the
// command completed, 1 for any failure.
func Main() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
