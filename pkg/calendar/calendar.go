package calendar

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tripdeck/tripdeck/pkg/trips"
)

// Event is a single all-day in-car calendar entry.
type Event struct {
	AllDay   bool   `json:"all_day"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Start    int64  `json:"start"`
}

type Calendar struct {
	Events []Event `json:"events"`
}

// Payload is the calendar sync body the vehicle expects.
type Payload struct {
	AccessDisabled bool       `json:"access_disabled"`
	Calendars      []Calendar `json:"calendars"`
	PhoneName      string     `json:"phone_name"`
	UUID           string     `json:"uuid"`
}

const phoneName = "iPhone"

// Build flattens stored trips into calendar entries - one summary entry per
// trip followed by one entry per stop - with start timestamps one minute
// apart beginning at now.
func Build(tripList []trips.Trip, now time.Time) []Event {
	events := []Event{}

	for _, trip := range tripList {
		events = append(events, Event{
			AllDay: true,
			Name:   fmt.Sprintf("%s | %s", trip.Payment, trip.Distance),
		})

		for _, stop := range trip.Locations {
			events = append(events, Event{
				AllDay:   true,
				Name:     stop.Name,
				Location: stop.Text,
			})
		}
	}

	for index := range events {
		events[index].Start = now.Add(time.Duration(index)*time.Minute).Unix() * 1000
	}

	return events
}

func NewPayload(events []Event) Payload {
	return Payload{
		AccessDisabled: false,
		Calendars: []Calendar{
			{Events: events},
		},
		PhoneName: phoneName,
		UUID:      uuid.New().String(),
	}
}
