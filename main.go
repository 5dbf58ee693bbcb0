package main

import (
	"os"

	"github.com/lastmile-ai/mcp-agent-go/cli"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
