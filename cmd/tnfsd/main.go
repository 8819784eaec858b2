// Command tnfsd runs the TNFS network file-service daemon.
package main

import (
	"os"

	"github.com/FujiNetWIFI/tnfsd/internal/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
