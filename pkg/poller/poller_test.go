package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdeck/tripdeck/pkg/calendar"
	"github.com/tripdeck/tripdeck/pkg/tesla"
	"github.com/tripdeck/tripdeck/pkg/trips"
	"github.com/tripdeck/tripdeck/pkg/uberdriver"
	"github.com/tripdeck/tripdeck/pkg/ubersupplier"
)

type fakeEvents struct {
	event ubersupplier.Event
	err   error

	calls int
}

func (f *fakeEvents) GetEvent(ctx context.Context, latitude float64, longitude float64) (ubersupplier.Event, error) {
	f.calls++
	if f.err != nil {
		return ubersupplier.Event{}, f.err
	}
	return f.event, nil
}

type fakeOffers struct {
	offers []uberdriver.Offer
	err    error

	calls     int
	latitude  float64
	longitude float64
}

func (f *fakeOffers) GetOffers(ctx context.Context, latitude float64, longitude float64) ([]uberdriver.Offer, error) {
	f.calls++
	f.latitude = latitude
	f.longitude = longitude
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

type fakeStore struct {
	upserted []trips.Trip
	recent   []trips.Trip
}

func (f *fakeStore) Upsert(ctx context.Context, trip *trips.Trip) error {
	f.upserted = append(f.upserted, *trip)
	return nil
}

func (f *fakeStore) Recent(ctx context.Context, limit int64) ([]trips.Trip, error) {
	return f.recent, nil
}

type fakeVehicle struct {
	driveState tesla.DriveState
	wakeErr    error

	wakes  int
	pushed []calendar.Payload
}

func (f *fakeVehicle) Wake(ctx context.Context) error {
	f.wakes++
	return f.wakeErr
}

func (f *fakeVehicle) GetDriveState(ctx context.Context) (tesla.DriveState, error) {
	return f.driveState, nil
}

func (f *fakeVehicle) PushCalendar(ctx context.Context, payload calendar.Payload) error {
	f.pushed = append(f.pushed, payload)
	return nil
}

func makeOffer(offerUUID string) uberdriver.Offer {
	var offer uberdriver.Offer
	offer.OfferUUIDs = []string{offerUUID}

	primaryOffer := &uberdriver.PrimaryOffer{JobUUID: "job-" + offerUUID}
	primaryOffer.MetaData.JobOfferModel = &uberdriver.JobOfferModel{
		StartLocationRef: "a",
		EndLocationRef:   "b",
		LocationMap: map[string]uberdriver.Location{
			"a": {Latitude: 1, Longitude: 1, Title: "Pickup"},
			"b": {Latitude: 2, Longitude: 2},
		},
	}
	offer.DriverOfferData.PrimaryOffer = primaryOffer

	return offer
}

func makeMalformedOffer() uberdriver.Offer {
	var offer uberdriver.Offer
	offer.OfferUUIDs = []string{"broken"}
	// primary offer present but the job offer model is missing
	offer.DriverOfferData.PrimaryOffer = &uberdriver.PrimaryOffer{}
	return offer
}

func newTestPoller(events *fakeEvents, offers *fakeOffers, store *fakeStore, vehicle *fakeVehicle) *Poller {
	return &Poller{
		Events:          events,
		Offers:          offers,
		Store:           store,
		Vehicle:         vehicle,
		RecentTripLimit: 2,
	}
}

func TestPollOffersContinuesPastMalformedOffer(t *testing.T) {
	offers := &fakeOffers{offers: []uberdriver.Offer{
		makeOffer("A"),
		makeMalformedOffer(),
		makeOffer("C"),
	}}
	store := &fakeStore{}

	p := newTestPoller(&fakeEvents{}, offers, store, &fakeVehicle{})

	err := p.PollOffers(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserted, 2)
	assert.Equal(t, "A", store.upserted[0].OfferUUID)
	assert.Equal(t, "C", store.upserted[1].OfferUUID)
}

func TestPollOffersUsesEventCoordinates(t *testing.T) {
	status := "online"
	events := &fakeEvents{event: ubersupplier.Event{Status: &status, Latitude: 51.5, Longitude: -0.1}}
	offers := &fakeOffers{}

	vehicle := &fakeVehicle{driveState: tesla.DriveState{Latitude: 40, Longitude: -70}}
	p := newTestPoller(events, offers, &fakeStore{}, vehicle)

	err := p.PollOffers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 51.5, offers.latitude)
	assert.Equal(t, -0.1, offers.longitude)
}

func TestPollOffersSkipsCycleOnEventError(t *testing.T) {
	events := &fakeEvents{err: ubersupplier.ErrUpstreamUnavailable}
	offers := &fakeOffers{}

	p := newTestPoller(events, offers, &fakeStore{}, &fakeVehicle{})

	err := p.PollOffers(context.Background())
	assert.ErrorIs(t, err, ubersupplier.ErrUpstreamUnavailable)
	assert.Zero(t, offers.calls)
}

func TestPollOffersIgnoresOffersWithoutPrimaryOffer(t *testing.T) {
	var secondary uberdriver.Offer
	secondary.OfferUUIDs = []string{"S"}

	offers := &fakeOffers{offers: []uberdriver.Offer{secondary}}
	store := &fakeStore{}

	p := newTestPoller(&fakeEvents{}, offers, store, &fakeVehicle{})

	err := p.PollOffers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store.upserted)
}

func TestSyncCalendarPushesRecentTrips(t *testing.T) {
	trip := trips.Trip{
		Payment:  "$10.00",
		Distance: "3 mi total",
		Locations: []trips.Stop{
			{Name: "One", Text: "1, 1"},
			{Name: "Two", Text: "2, 2"},
			{Name: "Three", Text: "3, 3"},
		},
	}

	store := &fakeStore{recent: []trips.Trip{trip, trip}}
	vehicle := &fakeVehicle{}

	p := newTestPoller(&fakeEvents{}, &fakeOffers{}, store, vehicle)

	err := p.SyncCalendar(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, vehicle.wakes)
	require.Len(t, vehicle.pushed, 1)
	require.Len(t, vehicle.pushed[0].Calendars, 1)
	assert.Len(t, vehicle.pushed[0].Calendars[0].Events, 8)
}

func TestSyncCalendarAbortsWhenWakeFails(t *testing.T) {
	vehicle := &fakeVehicle{wakeErr: errors.New("vehicle unreachable")}

	p := newTestPoller(&fakeEvents{}, &fakeOffers{}, &fakeStore{}, vehicle)

	err := p.SyncCalendar(context.Background())
	assert.Error(t, err)
	assert.Empty(t, vehicle.pushed)
}
