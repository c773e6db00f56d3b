package main

import (
	"os"

	"github.com/captainhammy/houdini-package-runner/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
