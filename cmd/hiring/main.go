package main

import (
	"fmt"
	"os"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/app"
)

func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "hiring:", err)
		os.Exit(app.ExitCode(err))
	}
}
