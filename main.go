package main

import (
	"os"

	"todo-backend/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version, os.Stderr))
}
