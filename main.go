package main

import (
	"os"

	"github.com/CareerDesk/CareerDesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
