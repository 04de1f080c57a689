package main

import (
	"os"

	"github.com/solrq/solrq/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
