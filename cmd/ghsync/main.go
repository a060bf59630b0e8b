package main

import (
	"github.com/joho/godotenv"

	"ghsync/internal/cmd"
)

func main() {
	// A .env file in the working directory may provide GITHUB_TOKEN.
	_ = godotenv.Load()

	cmd.Execute()
}
