package main

import (
	"os"

	"github.com/wonny/rentix/backend/cmd/rentix/commands"
)

// main is the entry point for the rentix CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/rentix [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
