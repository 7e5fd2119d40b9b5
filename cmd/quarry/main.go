package main

import (
	"os"

	"github.com/serum-errors/go-serum"

	quarryapp "github.com/quarrytools/quarry/app"
	appbase "github.com/quarrytools/quarry/app/base"
	"github.com/quarrytools/quarry/qapi"
)

func main() {
	if err := appbase.Bootstrap(); err != nil {
		serr, ok := err.(serum.ErrorInterface)
		if !ok {
			serr = serum.Error(qapi.ECodeInitialization,
				serum.WithMessageLiteral("startup failed"),
				serum.WithCause(err),
			).(serum.ErrorInterface)
		}
		qapi.TerminalError(serr, 10)
	}

	app := quarryapp.App
	app.Reader = os.Stdin
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	err := app.Run(os.Args)
	if err != nil {
		os.Exit(1)
	}
}
