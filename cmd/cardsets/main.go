// Command cardsets manages a tree of card sets from the command line.
package main

import "github.com/mesh-intelligence/cardsets/internal/cli"

func main() {
	cli.Execute()
}
