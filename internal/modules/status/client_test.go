package status_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/status"
)

type fakeSessions struct {
	session models.Session
	ok      bool
}

func (f *fakeSessions) LoadSession() (models.Session, bool) { return f.session, f.ok }

func loggedIn() *fakeSessions {
	return &fakeSessions{session: models.Session{Token: "tok-1", Driver: models.Driver{ID: "d1", Name: "Budi"}}, ok: true}
}

func strPtr(s string) *string { return &s }

func validRequest() models.StatusUpdateRequest {
	origin := "PT Indonesia Koito"
	dest := "YIMM PG LOKAL PO 1"
	return models.StatusUpdateRequest{
		Direction:    models.DirectionForward,
		Origin:       &origin,
		Destination:  &dest,
		DeliveryDate: "2025-06-01",
		EtdTime:      strPtr("05:02"),
	}
}

func TestSubmit_Success(t *testing.T) {
	var got models.StatusUpdateRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := status.NewClient(server.Client(), server.URL, loggedIn())

	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.Equal(t, models.DirectionForward, got.Direction)
	assert.Equal(t, "05:02", *got.EtdTime)
	assert.Nil(t, got.Lat)
}

func TestSubmit_NoSession_NoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := status.NewClient(server.Client(), server.URL, &fakeSessions{})

	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{})

	assert.ErrorIs(t, err, models.ErrNotLoggedIn)
	assert.Zero(t, calls.Load())
}

func TestSubmit_RequireLocationWithoutCoords_NoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := status.NewClient(server.Client(), server.URL, loggedIn())

	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{RequireLocation: true})

	// Precondition failure, distinguishable from a network failure.
	assert.ErrorIs(t, err, models.ErrLocationUnavailable)
	assert.NotErrorIs(t, err, models.ErrRequestFailed)
	assert.Zero(t, calls.Load(), "no HTTP request may be constructed")
}

func TestSubmit_CoordsAttachedEvenWhenOptional(t *testing.T) {
	var got models.StatusUpdateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	client := status.NewClient(server.Client(), server.URL, loggedIn())

	speed := 13.9
	accuracy := 20.0
	coords := &models.Coordinates{Latitude: -6.28, Longitude: 107.14, Speed: &speed, Accuracy: &accuracy}
	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{Coords: coords})

	require.NoError(t, err)
	require.NotNil(t, got.Lat)
	assert.Equal(t, -6.28, *got.Lat)
	assert.Equal(t, 107.14, *got.Lng)
	assert.Equal(t, 13.9, *got.Speed)
	assert.Equal(t, 20.0, *got.Accuracy)
}

func TestSubmit_Non2xxIsUniformFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := status.NewClient(server.Client(), server.URL, loggedIn())

	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{})

	assert.ErrorIs(t, err, models.ErrRequestFailed)
}

func TestSubmit_UnreachableServerIsUniformFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := status.NewClient(nil, server.URL, loggedIn())

	err := client.Submit(context.Background(), validRequest(), status.SubmitOptions{})

	assert.ErrorIs(t, err, models.ErrRequestFailed)
}

func TestPinger_SendCarriesDriverID(t *testing.T) {
	var got models.LocationPing
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	pinger := status.NewPinger(server.Client(), server.URL, loggedIn(), nil)

	heading := 270.0
	out := pinger.Send(context.Background(), models.Coordinates{Latitude: -6.28, Longitude: 107.14, Heading: &heading})

	assert.True(t, out.Applied())
	assert.Equal(t, "d1", got.DriverID)
	assert.Equal(t, 270.0, got.Heading)
}

func TestPinger_FailuresAreIgnoredOutcomes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	pinger := status.NewPinger(server.Client(), server.URL, loggedIn(), nil)

	out := pinger.Send(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})

	assert.Equal(t, models.OutcomeIgnored, out)
}

func TestPinger_NoSessionIsIgnoredOutcome(t *testing.T) {
	pinger := status.NewPinger(nil, "http://127.0.0.1:0", &fakeSessions{}, nil)

	out := pinger.Send(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})

	assert.Equal(t, models.OutcomeIgnored, out)
}
