package main

import (
	"log"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/app"
)

func main() {
	if err := app.RunStub(); err != nil {
		log.Fatal(err)
	}
}
