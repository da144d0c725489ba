package status

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"haul-tracker/internal/models"
)

// Pinger sends the periodic fire-and-forget position reports. Failures
// are swallowed into an Ignored outcome and logged at debug: the next
// fix retries implicitly and trip progress never blocks on telemetry.
type Pinger struct {
	http     *http.Client
	baseURL  string
	sessions SessionSource
	logger   *slog.Logger
}

// NewPinger builds a telemetry pinger. httpClient and logger may be nil.
func NewPinger(httpClient *http.Client, baseURL string, sessions SessionSource, logger *slog.Logger) *Pinger {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pinger{http: httpClient, baseURL: baseURL, sessions: sessions, logger: logger}
}

// Send reports one fix to /api/locations/update.
func (p *Pinger) Send(ctx context.Context, coords models.Coordinates) models.Outcome {
	session, ok := p.sessions.LoadSession()
	if !ok {
		p.logger.Debug("location ping skipped: no session")
		return models.OutcomeIgnored
	}

	ping := models.LocationPing{
		Lat:      coords.Latitude,
		Lng:      coords.Longitude,
		Heading:  coords.HeadingOrZero(),
		DriverID: session.Driver.ID,
	}

	body, err := json.Marshal(ping)
	if err != nil {
		p.logger.Debug("location ping ignored", "error", err)
		return models.OutcomeIgnored
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/locations/update", bytes.NewReader(body))
	if err != nil {
		p.logger.Debug("location ping ignored", "error", err)
		return models.OutcomeIgnored
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := p.http.Do(req)
	if err != nil {
		p.logger.Debug("location ping ignored", "error", err)
		return models.OutcomeIgnored
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Debug("location ping ignored", "status", resp.StatusCode)
		return models.OutcomeIgnored
	}
	return models.OutcomeApplied
}
