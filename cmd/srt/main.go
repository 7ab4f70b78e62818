package main

import (
	"os"

	"github.com/simplert/srt/internal/cli"
	"github.com/simplert/srt/internal/tunnel"
)

func main() {
	if err := cli.Execute(tunnel.New()); err != nil {
		os.Exit(1)
	}
}
