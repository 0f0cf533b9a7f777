// Package main provides the sparqlq command-line SPARQL client.
package main

import (
	"os"

	"github.com/kg-project/sparqlq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
