package main

import (
	"os"

	"github.com/mizuki-h/subrail/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
