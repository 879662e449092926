package poller

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/tripdeck/tripdeck/pkg/database"
	"github.com/tripdeck/tripdeck/pkg/tesla"
	"github.com/tripdeck/tripdeck/pkg/trips"
	"github.com/tripdeck/tripdeck/pkg/uberdriver"
	"github.com/tripdeck/tripdeck/pkg/ubersupplier"
	"github.com/tripdeck/tripdeck/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "poller",
		Usage: "Poll driver offers into the trip store and sync the vehicle calendar",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the offer poll and calendar sync loop",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					poller := NewPollerFromEnvironment()

					go func() {
						if err := poller.Run(context.Background()); err != nil {
							log.Fatal().Err(err).Msg("Poller stopped")
						}
					}()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					return nil
				},
			},
			{
				Name:      "debug-offers",
				Usage:     "parse an offers JSON capture and print the resulting trips",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					file, err := os.Open(c.Args().First())
					if err != nil {
						return err
					}
					defer file.Close()

					jsonBytes, err := io.ReadAll(file)
					if err != nil {
						return err
					}

					var offers []uberdriver.Offer
					if err := json.Unmarshal(jsonBytes, &offers); err != nil {
						return err
					}

					for _, offer := range offers {
						if offer.DriverOfferData.PrimaryOffer == nil {
							continue
						}

						trip, err := trips.FromOffer(offer, time.Now())
						if err != nil {
							log.Warn().Err(err).Msg("Skipping offer")
							continue
						}

						pretty.Println(trip)
					}

					return nil
				},
			},
		},
	}
}

// NewPollerFromEnvironment wires the real collaborators with intervals taken
// from the environment.
func NewPollerFromEnvironment() *Poller {
	env := util.GetEnvironmentVariables()

	poller := &Poller{
		Events:  ubersupplier.NewClient(),
		Offers:  uberdriver.NewClient(),
		Store:   trips.Store{},
		Vehicle: tesla.NewClient(),

		OfferPollInterval:    defaultOfferPollInterval,
		CalendarSyncInterval: defaultCalendarSyncInterval,
		RecentTripLimit:      defaultRecentTripLimit,
	}

	if env["TRIPDECK_OFFER_POLL_INTERVAL"] != "" {
		if interval, err := time.ParseDuration(env["TRIPDECK_OFFER_POLL_INTERVAL"]); err == nil {
			poller.OfferPollInterval = interval
		} else {
			log.Fatal().Err(err).Msg("Invalid \"TRIPDECK_OFFER_POLL_INTERVAL\"")
		}
	}

	if env["TRIPDECK_CALENDAR_SYNC_INTERVAL"] != "" {
		if interval, err := time.ParseDuration(env["TRIPDECK_CALENDAR_SYNC_INTERVAL"]); err == nil {
			poller.CalendarSyncInterval = interval
		} else {
			log.Fatal().Err(err).Msg("Invalid \"TRIPDECK_CALENDAR_SYNC_INTERVAL\"")
		}
	}

	return poller
}
