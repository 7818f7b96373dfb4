// Command cleaner cleans raw sales exports into typed, outlier-clipped
// tables and serves the same pipeline over HTTP.
package main

import (
	"os"

	"bizreport/internal/infrastructure"
)

func main() {
	err := newRootCmd().Execute()
	_ = infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}
