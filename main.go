package main

import (
	"os"

	"storekeep/cli"
)

func main() {
	os.Exit(cli.Execute())
}
