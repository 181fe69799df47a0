package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/resume-sieve/cmd"
)

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
