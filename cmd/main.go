package main

import (
	"fmt"
	"os"

	"github.com/funnytourism/tourism-api/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
