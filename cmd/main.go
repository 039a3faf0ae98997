package main

import (
	"os"

	"timed-quiz-platform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
