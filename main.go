package main

import (
	"os"

	"github.com/zulip-archive/zulip-archive/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
