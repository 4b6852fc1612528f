package main

import (
	"os"

	"github.com/tizendotnet/netcore-jenkins/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
