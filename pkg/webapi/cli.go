package webapi

import (
	"github.com/tripdeck/tripdeck/pkg/database"
	"github.com/tripdeck/tripdeck/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provide a read-only API over stored trips",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the API server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server",
						Value: ":8080",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
