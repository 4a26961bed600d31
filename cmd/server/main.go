// Package main implements the taskhub API server. The serve command runs the
// HTTP API; migrate applies the embedded schema migrations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
