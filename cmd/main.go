package main

import (
	"os"

	"talentflow-assessments/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
