// ZettelScript - knowledge-graph engine for Markdown vaults.
//
// ZettelScript indexes a vault of Markdown notes into a typed
// node/edge graph, keeps it fresh as files change, and answers
// structural queries over it: paths, backlinks, neighborhoods,
// connectivity.
package main

import (
	"fmt"
	"os"

	"github.com/RobThePCGuy/ZettelScript-sub003/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
