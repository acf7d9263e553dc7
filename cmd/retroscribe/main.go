package main

import (
	"os"

	"github.com/msto63/retroscribe/cmd/retroscribe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
