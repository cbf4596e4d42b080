package main

import (
	"os"

	"github.com/dcomatch/dcomatch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
