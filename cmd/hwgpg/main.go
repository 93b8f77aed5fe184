package main

import (
	"os"

	"hwgpg/cmd/hwgpg/commands"
)

func main() {
	os.Exit(commands.Execute())
}
