// ABOUTME: Entry point for the apptemplate admin console
// ABOUTME: Terminal client for user/role administration and account management

package main

import (
	"fmt"
	"os"

	"github.com/sercanio/apptemplate-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
