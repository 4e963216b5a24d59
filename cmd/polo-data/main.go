// Command polo-data manages the logger's cached reference datasets.
package main

import (
	"fmt"
	"os"

	"github.com/morikuni/failure/v2"

	"github.com/marcinplaczek/app-polo/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		var userMessage string
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		} else {
			userMessage = err.Error()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
