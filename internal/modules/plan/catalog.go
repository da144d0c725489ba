// Package plan maintains the destination catalog: the list of docks with
// planned ETD/ETA windows for the current delivery date. The list is
// refreshed from the server and falls back to a static table when the
// server has never answered.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"haul-tracker/internal/models"
)

// Placeholder is the first entry of every destination list; selecting it
// means no destination has been chosen yet.
const Placeholder = "Select Destinasi"

// SessionSource yields the persisted auth session for the bearer header.
type SessionSource interface {
	LoadSession() (models.Session, bool)
}

// DateSink receives the resolved delivery date on every successful
// refresh so the reverse leg reads the same date without re-fetching.
// Satisfied by tripstore.Store.
type DateSink interface {
	SaveDeliveryDate(date string) models.Outcome
}

// Catalog is the destination list with plan lookup. Refresh replaces the
// list wholesale; readers always see either the previous complete list
// or the new one, never a partial mix.
type Catalog struct {
	http     *http.Client
	baseURL  string
	sessions SessionSource
	dates    DateSink
	logger   *slog.Logger

	mu    sync.RWMutex
	plans []models.DestinationPlan
	date  string
}

// NewCatalog builds a catalog that starts on the static fallback table.
func NewCatalog(httpClient *http.Client, baseURL string, sessions SessionSource, dates DateSink, logger *slog.Logger) *Catalog {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		http:     httpClient,
		baseURL:  baseURL,
		sessions: sessions,
		dates:    dates,
		logger:   logger,
	}
}

// Refresh fetches the plan list for date (YYYY-MM-DD). On success the
// whole list and date swap atomically and the date is written through to
// the store. On any failure the previous list is retained — the caller
// decides whether the failure is surfaced (explicit refresh) or silent
// (interval refresh).
func (c *Catalog) Refresh(ctx context.Context, date string) error {
	endpoint := fmt.Sprintf("%s/api/plan/list?deliveryDate=%s", c.baseURL, url.QueryEscape(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("plan.Refresh: %w", err)
	}
	if session, ok := c.sessions.LoadSession(); ok {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", models.ErrRequestFailed, resp.StatusCode)
	}

	var body models.PlanListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	if !body.OK || len(body.Plans) == 0 {
		return fmt.Errorf("%w: empty plan list", models.ErrRequestFailed)
	}

	resolvedDate := body.DeliveryDate
	if resolvedDate == "" {
		resolvedDate = date
	}

	c.mu.Lock()
	c.plans = body.Plans
	c.date = resolvedDate
	c.mu.Unlock()

	if out := c.dates.SaveDeliveryDate(resolvedDate); !out.Applied() {
		c.logger.Warn("delivery date write-through ignored", "date", resolvedDate)
	}

	c.logger.Debug("plan catalog refreshed", "date", resolvedDate, "destinations", len(body.Plans))
	return nil
}

// StartAutoRefresh runs the silent interval refresh until ctx is
// cancelled. Failures only log; the visible refresh path is the explicit
// Refresh call.
func (c *Catalog) StartAutoRefresh(ctx context.Context, interval time.Duration, date func() string) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx, date()); err != nil {
					c.logger.Debug("silent plan refresh failed", "error", err)
				}
			}
		}
	}()
}

// Destinations returns the placeholder followed by the active
// destination names. When no refresh has ever succeeded this is the
// static fallback table.
func (c *Catalog) Destinations() []string {
	names := []string{Placeholder}
	for _, p := range c.active() {
		names = append(names, p.Destination)
	}
	return names
}

// DeliveryDate returns the date of the active list, or empty when only
// the fallback table (which has no date association) is active.
func (c *Catalog) DeliveryDate() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date
}

// PlanFor looks up the planned window for a destination name on one leg.
// An unknown name yields the "-" placeholders: a valid, expected state,
// not an error.
func (c *Catalog) PlanFor(destination string, d models.Direction) models.PlanTimes {
	for _, p := range c.active() {
		if p.Destination == destination {
			return p.Times(d)
		}
	}
	return models.PlanTimes{Etd: models.NoPlanTime, Eta: models.NoPlanTime}
}

func (c *Catalog) active() []models.DestinationPlan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.plans) > 0 {
		return c.plans
	}
	return fallbackPlans
}

func timePtr(s string) *string { return &s }

// fallbackPlans is the static table used until the first successful
// fetch. It carries the known dock windows but no date association.
var fallbackPlans = []models.DestinationPlan{
	{
		Destination: "YIMM PG LOKAL PO 1",
		ForwardEtd:  timePtr("05:00"), ForwardEta: timePtr("08:00"),
	},
	{
		Destination: "YIMM PG LOKAL PO 2",
		ForwardEtd:  timePtr("08:00"), ForwardEta: timePtr("13:00"),
	},
	{
		Destination: "YIMM PG LOKAL PO 3",
		ForwardEtd:  timePtr("14:00"), ForwardEta: timePtr("19:00"),
	},
}
