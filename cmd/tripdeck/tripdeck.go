package main

import (
	"os"
	"time"

	"github.com/tripdeck/tripdeck/pkg/poller"
	"github.com/tripdeck/tripdeck/pkg/webapi"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TRIPDECK_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRIPDECK_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "tripdeck",
		Description: "Polls driver offers into a trip store and keeps the vehicle calendar in sync",

		Commands: []*cli.Command{
			poller.RegisterCLI(),
			webapi.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
