package ubersupplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tripdeck/tripdeck/pkg/util"
)

// ErrUpstreamUnavailable marks a failed or undecodable supply backend
// response. Callers skip the current poll cycle and retry on the next tick.
var ErrUpstreamUnavailable = errors.New("supply backend unavailable")

// Event is the current driver status and position used as polling context.
// Status is nil when the backend reports no live driver events, in which case
// the coordinates fall back to the vehicle's own last known position.
type Event struct {
	Status    *string
	Latitude  float64
	Longitude float64
}

type Client struct {
	HTTPClient *http.Client

	BaseURL string

	SupplierSID  string
	SupplierCSID string
	DriverUUID   string
}

const graphqlEndpoint = "/graphql"

func NewClient() *Client {
	env := util.GetEnvironmentVariables()

	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},

		BaseURL: env["TRIPDECK_SUPPLIER_BASE_URL"],

		SupplierSID:  env["TRIPDECK_SUPPLIER_SID"],
		SupplierCSID: env["TRIPDECK_SUPPLIER_CSID"],
		DriverUUID:   env["TRIPDECK_DRIVER_UUID"],
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

const getDriverEventsQuery = `query GetDriverEvents($orgUUID: String!) {
  getDriverEvents(orgUUID: $orgUUID) {
    driverEvents {
      driverUUID
      driverStatus
      driverLocation {
        latitude
        longitude
        course
        __typename
      }
      dropOffInfo {
        locations {
          latitude
          longitude
          __typename
        }
        __typename
      }
      driverStatusState
      vehicleUUID
      __typename
    }
    __typename
  }
}`

type driverLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type driverEvent struct {
	DriverUUID     string          `json:"driverUUID"`
	DriverStatus   string          `json:"driverStatus"`
	DriverLocation *driverLocation `json:"driverLocation"`
	VehicleUUID    string          `json:"vehicleUUID"`
}

type driverEventsResponse struct {
	Data struct {
		GetDriverEvents struct {
			DriverEvents []driverEvent `json:"driverEvents"`
		} `json:"getDriverEvents"`
	} `json:"data"`
}

// GetEvent queries the supply backend for the current driver event, sending
// the vehicle's position as the fallback context.
func (c *Client) GetEvent(ctx context.Context, latitude float64, longitude float64) (Event, error) {
	event := Event{Status: nil, Latitude: latitude, Longitude: longitude}

	// the backend expects variables as an embedded JSON string
	variables, err := json.Marshal(map[string]string{"orgUUID": c.DriverUUID})
	if err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	requestBody, err := json.Marshal(map[string]any{
		"query":     getDriverEventsQuery,
		"variables": string(variables),
	})
	if err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+graphqlEndpoint, bytes.NewReader(requestBody))
	if err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", fmt.Sprintf("sid=%s;csid=%s;", c.SupplierSID, c.SupplierCSID))
	req.Header.Set("x-csrf-token", "x")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return event, fmt.Errorf("%w: supply backend returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	var driverEvents driverEventsResponse
	if err := json.Unmarshal(jsonBytes, &driverEvents); err != nil {
		return event, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	events := driverEvents.Data.GetDriverEvents.DriverEvents
	if len(events) > 0 {
		first := events[0]
		event.Status = &first.DriverStatus

		if first.DriverLocation != nil {
			event.Latitude = first.DriverLocation.Latitude
			event.Longitude = first.DriverLocation.Longitude
		}
	}

	return event, nil
}
