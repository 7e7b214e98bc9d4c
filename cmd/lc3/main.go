package main

import (
	"log"

	"github.com/spf13/afero"
)

func main() {
	app := NewApp(parseArgs(), afero.NewOsFs())
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
