// Command applytrackctl is the operator CLI: account maintenance and
// per-user statistics straight from the database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
