package tesla

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/tripdeck/tripdeck/pkg/calendar"
	"github.com/tripdeck/tripdeck/pkg/util"
)

// DriveState is the vehicle's last known position.
type DriveState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Client talks to the vehicle owner API.
type Client struct {
	HTTPClient *http.Client

	BaseURL     string
	AccessToken string
	VehicleID   string

	// WakeRetryInterval seeds the backoff between wake polls
	WakeRetryInterval time.Duration
}

const defaultWakeRetryInterval = 2 * time.Second

func NewClient() *Client {
	env := util.GetEnvironmentVariables()

	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},

		BaseURL:     env["TRIPDECK_TESLA_BASE_URL"],
		AccessToken: env["TRIPDECK_TESLA_ACCESS_TOKEN"],
		VehicleID:   env["TRIPDECK_TESLA_VEHICLE_ID"],

		WakeRetryInterval: defaultWakeRetryInterval,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) doRequest(ctx context.Context, method string, path string, requestBody any, response any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		jsonBytes, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vehicle api returned %d for %s", resp.StatusCode, path)
	}

	if response == nil {
		return nil
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonBytes, response)
}

type wakeResponse struct {
	Response struct {
		State string `json:"state"`
	} `json:"response"`
}

// Wake requests a wake up and polls until the vehicle reports online. Safe to
// call repeatedly.
func (c *Client) Wake(ctx context.Context) error {
	operation := func() error {
		var wake wakeResponse
		path := fmt.Sprintf("/api/1/vehicles/%s/wake_up", c.VehicleID)
		if err := c.doRequest(ctx, "POST", path, nil, &wake); err != nil {
			return backoff.Permanent(err)
		}

		if wake.Response.State != "online" {
			return errors.New("vehicle still asleep")
		}

		return nil
	}

	wakeBackoff := backoff.NewExponentialBackOff()
	wakeBackoff.InitialInterval = c.WakeRetryInterval
	wakeBackoff.MaxElapsedTime = time.Minute

	err := backoff.Retry(operation, backoff.WithContext(wakeBackoff, ctx))
	if err != nil {
		return fmt.Errorf("wake vehicle: %w", err)
	}

	log.Debug().Str("vehicle", c.VehicleID).Msg("Vehicle online")

	return nil
}

type vehicleDataResponse struct {
	Response struct {
		State      string     `json:"state"`
		DriveState DriveState `json:"drive_state"`
	} `json:"response"`
}

// GetDriveState fetches the vehicle's current position.
func (c *Client) GetDriveState(ctx context.Context) (DriveState, error) {
	var vehicleData vehicleDataResponse

	path := fmt.Sprintf("/api/1/vehicles/%s/vehicle_data", c.VehicleID)
	if err := c.doRequest(ctx, "GET", path, nil, &vehicleData); err != nil {
		return DriveState{}, fmt.Errorf("get drive state: %w", err)
	}

	return vehicleData.Response.DriveState, nil
}

// PushCalendar replaces the vehicle's upcoming calendar entries.
func (c *Client) PushCalendar(ctx context.Context, payload calendar.Payload) error {
	path := fmt.Sprintf("/api/1/vehicles/%s/command/upcoming_calendar_entries", c.VehicleID)

	err := c.doRequest(ctx, "POST", path, map[string]any{"calendar_data": payload}, nil)
	if err != nil {
		return fmt.Errorf("push calendar: %w", err)
	}

	return nil
}
