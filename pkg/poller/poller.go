package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tripdeck/tripdeck/pkg/calendar"
	"github.com/tripdeck/tripdeck/pkg/tesla"
	"github.com/tripdeck/tripdeck/pkg/trips"
	"github.com/tripdeck/tripdeck/pkg/uberdriver"
	"github.com/tripdeck/tripdeck/pkg/ubersupplier"
)

type EventSource interface {
	GetEvent(ctx context.Context, latitude float64, longitude float64) (ubersupplier.Event, error)
}

type OfferSource interface {
	GetOffers(ctx context.Context, latitude float64, longitude float64) ([]uberdriver.Offer, error)
}

type TripStore interface {
	Upsert(ctx context.Context, trip *trips.Trip) error
	Recent(ctx context.Context, limit int64) ([]trips.Trip, error)
}

type Vehicle interface {
	Wake(ctx context.Context) error
	GetDriveState(ctx context.Context) (tesla.DriveState, error)
	PushCalendar(ctx context.Context, payload calendar.Payload) error
}

// Poller runs the two periodic tasks - offer polling and calendar sync - from
// a single goroutine, so the task bodies never overlap. Each tick runs inside
// its own error boundary; a failed cycle is logged and the loop carries on.
type Poller struct {
	Events  EventSource
	Offers  OfferSource
	Store   TripStore
	Vehicle Vehicle

	OfferPollInterval    time.Duration
	CalendarSyncInterval time.Duration

	// RecentTripLimit is how many stored trips each calendar sync pushes
	RecentTripLimit int64
}

const defaultOfferPollInterval = 2 * time.Second
const defaultCalendarSyncInterval = 3 * time.Second
const defaultRecentTripLimit = 2

// Run blocks until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().
		Dur("offerpoll", p.OfferPollInterval).
		Dur("calendarsync", p.CalendarSyncInterval).
		Msg("Starting trip poller")

	if err := p.Vehicle.Wake(ctx); err != nil {
		log.Error().Err(err).Msg("Initial vehicle wake failed")
	}

	offerTicker := time.NewTicker(p.OfferPollInterval)
	defer offerTicker.Stop()

	calendarTicker := time.NewTicker(p.CalendarSyncInterval)
	defer calendarTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-offerTicker.C:
			if err := p.PollOffers(ctx); err != nil {
				log.Error().Err(err).Msg("Offer poll cycle failed")
			}
		case <-calendarTicker.C:
			if err := p.SyncCalendar(ctx); err != nil {
				log.Error().Err(err).Msg("Calendar sync cycle failed")
			}
		}
	}
}

// PollOffers runs one offer poll cycle: drive state, driver event, offers,
// then a merge-upsert per parseable offer. A malformed offer is skipped
// without aborting the rest of the batch.
func (p *Poller) PollOffers(ctx context.Context) error {
	driveState, err := p.Vehicle.GetDriveState(ctx)
	if err != nil {
		return err
	}

	event, err := p.Events.GetEvent(ctx, driveState.Latitude, driveState.Longitude)
	if err != nil {
		return err
	}

	offers, err := p.Offers.GetOffers(ctx, event.Latitude, event.Longitude)
	if err != nil {
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

		if err := p.Store.Upsert(ctx, trip); err != nil {
			log.Error().Err(err).Str("offer", trip.OfferUUID).Msg("Failed to store trip")
			continue
		}

		log.Info().
			Str("offer", trip.OfferUUID).
			Str("payment", trip.Payment).
			Int("stops", len(trip.Locations)).
			Msg("Stored trip")
	}

	return nil
}

// SyncCalendar runs one calendar sync cycle: read the most recent trips,
// flatten them into calendar entries, wake the vehicle and push.
func (p *Poller) SyncCalendar(ctx context.Context) error {
	recentTrips, err := p.Store.Recent(ctx, p.RecentTripLimit)
	if err != nil {
		return err
	}

	events := calendar.Build(recentTrips, time.Now())

	if err := p.Vehicle.Wake(ctx); err != nil {
		return err
	}

	if err := p.Vehicle.PushCalendar(ctx, calendar.NewPayload(events)); err != nil {
		return err
	}

	log.Info().Int("events", len(events)).Msg("Pushed calendar")

	return nil
}
