package main

import (
	"os"

	"github.com/hdtinh57/smartdocqa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
