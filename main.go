package main

import (
	"os"

	"scour/app"
)

func main() {
	os.Exit(app.Run(os.Args))
}
