// Command signalctl prints dashboard statistics and exports the signal table
// without running the web server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
