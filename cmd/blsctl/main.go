package main

import (
	"os"

	"github.com/zmlAEQ/bls-host/cmd/blsctl/commands"
	"github.com/zmlAEQ/bls-host/pkg/logger"
)

func main() {
	err := commands.New(commands.Options{}).Execute()
	_ = logger.Sync()
	if code := commands.Report(os.Stderr, err); code != commands.ExitOK {
		os.Exit(code)
	}
}
