package uberdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/tripdeck/tripdeck/pkg/util"
)

// ErrAuthentication marks a failed token exchange. Callers abort the current
// poll cycle and retry authentication from scratch on the next one.
var ErrAuthentication = errors.New("driver backend authentication failed")

// Client talks to the driver-offer backend. A short lived bearer token is
// exchanged lazily from the long lived refresh credential before the first
// request, and re-exchanged once the stored expiry has passed.
type Client struct {
	HTTPClient *http.Client

	BaseURL        string
	TokenEndpoint  string
	OffersEndpoint string

	ClientID     string
	RefreshToken string

	mutex           sync.Mutex
	accessToken     string
	tokenExpiration time.Time
}

func NewClient() *Client {
	env := util.GetEnvironmentVariables()

	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},

		BaseURL:        env["TRIPDECK_UBER_BASE_URL"],
		TokenEndpoint:  env["TRIPDECK_UBER_TOKEN_ENDPOINT"],
		OffersEndpoint: env["TRIPDECK_UBER_OFFERS_ENDPOINT"],

		ClientID:     env["TRIPDECK_UBER_CLIENT_ID"],
		RefreshToken: env["TRIPDECK_UBER_REFRESH_TOKEN"],
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

type tokenRequest struct {
	Request struct {
		ClientID     string `json:"clientID"`
		RefreshToken string `json:"refreshToken"`
		GrantType    string `json:"grantType"`
	} `json:"request"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	// Expiry arrives as a protobuf style long object
	ExpiresIn struct {
		Low int64 `json:"low"`
	} `json:"expiresIn"`
}

// Authenticate exchanges the refresh credential for a fresh bearer token.
// Transport errors are retried with capped exponential backoff; a non-2xx
// response fails immediately.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.refreshTokenLocked(ctx)
}

func (c *Client) refreshTokenLocked(ctx context.Context) error {
	var request tokenRequest
	request.Request.ClientID = c.ClientID
	request.Request.RefreshToken = c.RefreshToken
	request.Request.GrantType = "REFRESH_TOKEN"

	requestBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAuthentication, err)
	}

	var token tokenResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+c.TokenEndpoint, bytes.NewReader(requestBody))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("token endpoint returned %d", resp.StatusCode))
		}

		jsonBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		return json.Unmarshal(jsonBytes, &token)
	}

	retryBackoff := backoff.NewExponentialBackOff()
	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, 3), ctx))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAuthentication, err)
	}

	if token.AccessToken == "" {
		return fmt.Errorf("%w: token endpoint returned no access token", ErrAuthentication)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiration = time.Now().Add(time.Duration(token.ExpiresIn.Low) * time.Second)

	log.Debug().Time("expires", c.tokenExpiration).Msg("Refreshed driver backend token")

	return nil
}

// ensureToken refreshes the bearer token if none is held or the stored expiry
// has passed. Serialised behind the client mutex so concurrent callers cannot
// trigger duplicate exchanges.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.accessToken == "" || !time.Now().Before(c.tokenExpiration) {
		if err := c.refreshTokenLocked(ctx); err != nil {
			return "", err
		}
	}

	return c.accessToken, nil
}

type offersResponse struct {
	Data struct {
		Offers []Offer `json:"offers"`
	} `json:"data"`
}

// GetOffers fetches the current offer list, attaching the event's coordinates
// as request context.
func (c *Client) GetOffers(ctx context.Context, latitude float64, longitude float64) ([]Offer, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+c.OffersEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Uber-Device-Location-Latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	req.Header.Set("X-Uber-Device-Location-Longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("get offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get offers: offers endpoint returned %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get offers: %w", err)
	}

	var offers offersResponse
	if err := json.Unmarshal(jsonBytes, &offers); err != nil {
		return nil, fmt.Errorf("get offers: %w", err)
	}

	return offers.Data.Offers, nil
}
