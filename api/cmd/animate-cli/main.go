// animate-cli turns a still image into an "animate this image" video prompt.
package main

import (
	"os"

	"animate-prompt/api/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
