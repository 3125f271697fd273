package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrCircuitOpen      = errors.New("circuit breaker open")
	ErrDecode           = errors.New("invalid response body")
)

var validate = validator.New()

// ClientConfig configures the iCrop REST client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the iCrop data API. It serves both the station directory
// and the climate records. Calls are single attempts: a failure is returned
// as is, and repeated failures open the breaker so later calls fail fast.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	log     *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "icrop",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		circuit: cb,
		log:     logger,
	}
}

// Stations returns the full station directory in provider order. Entries
// without id or name are skipped.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	var raw []Station
	if err := c.getJSON(ctx, "/estacoes", &raw); err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	out := make([]Station, 0, len(raw))
	for _, st := range raw {
		if err := validate.Struct(st); err != nil {
			c.log.Debug("skipping invalid station", "station", st, "err", err)
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// Daily returns daily readings for a station, newest first.
func (c *Client) Daily(ctx context.Context, stationID int) ([]Reading, error) {
	var out []Reading
	if err := c.getJSON(ctx, fmt.Sprintf("/clima_por_dia/%d", stationID), &out); err != nil {
		return nil, fmt.Errorf("fetch daily climate: %w", err)
	}
	return out, nil
}

// Hourly returns hourly readings for a station, newest first. The series
// contains midnight placeholder rows.
func (c *Client) Hourly(ctx context.Context, stationID int) ([]Reading, error) {
	var out []Reading
	if err := c.getJSON(ctx, fmt.Sprintf("/clima_por_hora/%d", stationID), &out); err != nil {
		return nil, fmt.Errorf("fetch hourly climate: %w", err)
	}
	return out, nil
}

// Forecast returns the forecast horizon for a station, oldest first.
func (c *Client) Forecast(ctx context.Context, stationID int) ([]ForecastRecord, error) {
	var out []ForecastRecord
	if err := c.getJSON(ctx, fmt.Sprintf("/previsao/%d", stationID), &out); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		c.log.Warn("icrop request failed", "path", path, "err", err)
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
