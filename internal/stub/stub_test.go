package stub_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/auth"
	"haul-tracker/internal/modules/plan"
	"haul-tracker/internal/modules/status"
	"haul-tracker/internal/modules/tripstore"
	"haul-tracker/internal/stub"
)

// startStub spins up the full stub API and returns its base URL plus the
// seeded plan table.
func startStub(t *testing.T) (string, *stub.PlanTable, *stub.StatusLog, *stub.LocationLog) {
	t.Helper()

	drivers := stub.NewDriverRegistry()
	statuses := stub.NewStatusLog()
	locations := stub.NewLocationLog()
	plans := stub.NewPlanTable()

	e := echo.New()
	handler := stub.NewHandler(drivers, statuses, locations, plans, "test-secret")
	stub.SetupRoutes(e, handler, "test-secret")

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server.URL, plans, statuses, locations
}

func strPtr(s string) *string { return &s }

// The full client flow against the stub: register, login, fetch plans,
// submit a status update, send a telemetry ping.
func TestStub_EndToEndClientFlow(t *testing.T) {
	baseURL, plans, statuses, locations := startStub(t)
	plans.Seed("2025-06-01", []models.DestinationPlan{
		{Destination: "DOCK A", ForwardEtd: strPtr("05:00"), ForwardEta: strPtr("08:00")},
	})

	store, err := tripstore.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	authClient := auth.NewClient(nil, baseURL, store, nil)

	require.NoError(t, authClient.Register(ctx, "Budi", "081234567890", "secret1"))

	session, err := authClient.Login(ctx, "Budi", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.Driver.ID)

	catalog := plan.NewCatalog(nil, baseURL, store, store, nil)
	require.NoError(t, catalog.Refresh(ctx, "2025-06-01"))
	assert.Equal(t, []string{plan.Placeholder, "DOCK A"}, catalog.Destinations())
	assert.Equal(t, models.PlanTimes{Etd: "05:00", Eta: "08:00"}, catalog.PlanFor("DOCK A", models.DirectionForward))

	origin := "PT Indonesia Koito"
	dest := "DOCK A"
	client := status.NewClient(nil, baseURL, store)
	err = client.Submit(ctx, models.StatusUpdateRequest{
		Direction:    models.DirectionForward,
		Origin:       &origin,
		Destination:  &dest,
		DeliveryDate: "2025-06-01",
		EtdTime:      strPtr("05:02"),
	}, status.SubmitOptions{})
	require.NoError(t, err)

	entries := statuses.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, session.Driver.ID, entries[0].DriverID)
	assert.Equal(t, "05:02", *entries[0].Request.EtdTime)

	pinger := status.NewPinger(nil, baseURL, store, nil)
	out := pinger.Send(ctx, models.Coordinates{Latitude: -6.28, Longitude: 107.14})
	assert.True(t, out.Applied())

	pings := locations.Entries()
	require.Len(t, pings, 1)
	assert.Equal(t, session.Driver.ID, pings[0].DriverID)
}

func TestStub_RejectsUnauthenticatedStatusUpdate(t *testing.T) {
	baseURL, _, statuses, _ := startStub(t)

	store, err := tripstore.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// A stale token from a previous run: present locally, rejected
	// remotely.
	store.SaveSession(models.Session{Token: "garbage", Driver: models.Driver{ID: "x"}})

	origin := "PT Indonesia Koito"
	dest := "DOCK A"
	client := status.NewClient(nil, baseURL, store)
	err = client.Submit(context.Background(), models.StatusUpdateRequest{
		Direction:   models.DirectionForward,
		Origin:      &origin,
		Destination: &dest,
		Plate:       strPtr("B 1 A"),
	}, status.SubmitOptions{})

	assert.ErrorIs(t, err, models.ErrRequestFailed)
	assert.Empty(t, statuses.Entries())
}

func TestStub_DuplicateRegistrationRejected(t *testing.T) {
	baseURL, _, _, _ := startStub(t)

	store, err := tripstore.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	authClient := auth.NewClient(nil, baseURL, store, nil)
	ctx := context.Background()

	require.NoError(t, authClient.Register(ctx, "Budi", "081234567890", "secret1"))
	err = authClient.Register(ctx, "Budi", "081234567890", "secret1")

	assert.ErrorIs(t, err, models.ErrRequestFailed)
}

func TestStub_PlanListUnknownDate(t *testing.T) {
	baseURL, _, _, _ := startStub(t)

	store, err := tripstore.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	authClient := auth.NewClient(nil, baseURL, store, nil)
	ctx := context.Background()
	require.NoError(t, authClient.Register(ctx, "Budi", "081234567890", "secret1"))
	_, err = authClient.Login(ctx, "Budi", "secret1")
	require.NoError(t, err)

	catalog := plan.NewCatalog(nil, baseURL, store, store, nil)
	err = catalog.Refresh(ctx, "1999-01-01")

	// ok:false counts as a failed refresh; the fallback table stays up.
	assert.ErrorIs(t, err, models.ErrRequestFailed)
	assert.Contains(t, catalog.Destinations(), "YIMM PG LOKAL PO 1")
}
