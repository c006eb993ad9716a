// blockduelctl is a command-line client for the blockduel match API.
package main

import (
	"github.com/blockduel/blockduel-go/internal/cli"
)

func main() {
	cli.Execute()
}
