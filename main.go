// SPDX-License-Identifier: MPL-2.0

// Package main is the entry point for the davit CLI.
package main

import "davit-cli/cmd/davit"

func main() {
	cmd.Execute()
}
