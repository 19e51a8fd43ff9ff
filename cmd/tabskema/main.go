// Command tabskema infers and validates the schema of tabular data.
package main

import (
	"os"

	"github.com/reoring/tabskema/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
