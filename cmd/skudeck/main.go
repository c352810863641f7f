package main

import (
	"os"

	"github.com/wonny/skudeck/cmd/skudeck/commands"
)

// main is the entry point for the skudeck CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/skudeck [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
