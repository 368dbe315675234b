package main

import (
	"os"

	"github.com/denysvitali/date-watermark/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
