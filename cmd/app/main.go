// Command app is the driver-facing terminal client. It wires the local
// trip store, the plan catalog, the location pipeline, and one state
// machine per leg, then drives them from a small interactive prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"haul-tracker/internal/config"
	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/auth"
	"haul-tracker/internal/modules/location"
	"haul-tracker/internal/modules/plan"
	"haul-tracker/internal/modules/status"
	"haul-tracker/internal/modules/trip"
	"haul-tracker/internal/modules/tripstore"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting", "apiBase", cfg.APIBase, "store", cfg.StorePath)

	store, err := tripstore.Open(cfg.StorePath, logger)
	if err != nil {
		logger.Error("failed to open trip store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	authClient := auth.NewClient(nil, cfg.APIBase, store, logger)
	submitter := status.NewClient(nil, cfg.APIBase, store)
	pinger := status.NewPinger(nil, cfg.APIBase, store, logger)
	catalog := plan.NewCatalog(nil, cfg.APIBase, store, store, logger)
	locator := location.NewLocator(location.NewSimProvider(nil), logger)

	newMachine := func(d models.Direction) *trip.Machine {
		return trip.NewMachine(trip.MachineConfig{
			Direction: d,
			Origin:    cfg.Origin,
			Store:     store,
			Catalog:   catalog,
			Locator:   locator,
			Submitter: submitter,
			Telemetry: pinger,
			Logger:    logger,
		})
	}
	machines := map[models.Direction]*trip.Machine{
		models.DirectionForward: newMachine(models.DirectionForward),
		models.DirectionReverse: newMachine(models.DirectionReverse),
	}
	active := models.DirectionForward
	defer machines[models.DirectionForward].Close()
	defer machines[models.DirectionReverse].Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First refresh is best-effort; the catalog serves the fallback table
	// until the server answers.
	if err := catalog.Refresh(ctx, machines[active].Form().DeliveryDate); err != nil {
		logger.Debug("initial plan refresh failed", "error", err)
	}
	// The silent refresh reads the shared date from the store rather than
	// a machine: the machines map is swapped on logout.
	catalog.StartAutoRefresh(ctx, cfg.PlanRefreshInterval, func() string {
		if date, ok := store.LoadDeliveryDate(); ok && date != "" {
			return date
		}
		return time.Now().Format("2006-01-02")
	})

	if session, ok := authClient.Session(); ok {
		fmt.Printf("Logged in as %s\n", session.Driver.Name)
	} else {
		fmt.Println("Not logged in. Use: login <name> <password>")
	}
	fmt.Println("Commands: login register plan use plate date etd eta dir status logout quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s]> ", active)
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		m := machines[active]

		switch fields[0] {
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <name> <password>")
				continue
			}
			session, err := authClient.Login(ctx, fields[1], fields[2])
			if err != nil {
				reportErr(err)
				continue
			}
			fmt.Printf("Welcome, %s\n", session.Driver.Name)

		case "register":
			if len(fields) != 4 {
				fmt.Println("usage: register <name> <phone> <password>")
				continue
			}
			if err := authClient.Register(ctx, fields[1], fields[2], fields[3]); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Registered. Now log in.")

		case "plan":
			if err := catalog.Refresh(ctx, m.Form().DeliveryDate); err != nil {
				reportErr(err)
			}
			printPlan(catalog, m)

		case "use":
			if len(fields) != 2 {
				fmt.Println("usage: use <index>")
				continue
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: use <index>")
				continue
			}
			if err := m.SelectDestination(index); err != nil {
				reportErr(err)
			}

		case "plate":
			if len(fields) < 2 {
				fmt.Println("usage: plate <nopol>")
				continue
			}
			m.SetPlate(strings.Join(fields[1:], " "))
			if err := m.SubmitPlate(ctx); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Plate sent.")

		case "date":
			if len(fields) != 2 {
				fmt.Println("usage: date <YYYY-MM-DD>")
				continue
			}
			if err := m.SetDeliveryDate(fields[1]); err != nil {
				reportErr(err)
			}

		case "etd":
			if err := m.SubmitETD(ctx); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Departure sent. Tracking started.")

		case "eta":
			if err := m.SubmitETA(ctx); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Arrival sent. Tracking stopped.")

		case "dir":
			active = active.Opposite()

		case "status":
			printStatus(m)

		case "logout":
			if trip.EndSession(ctx, machines[models.DirectionForward], machines[models.DirectionReverse]) {
				fmt.Println("Trip complete; trip data cleared.")
			} else {
				fmt.Println("Trip in progress; data retained for next login.")
			}

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func printPlan(catalog *plan.Catalog, m *trip.Machine) {
	date := catalog.DeliveryDate()
	if date == "" {
		date = m.Form().DeliveryDate
	}
	fmt.Printf("Plans for %s:\n", date)
	for i, name := range catalog.Destinations() {
		times := catalog.PlanFor(name, m.Direction())
		if i == 0 {
			fmt.Printf("  %d. %s\n", i, name)
			continue
		}
		fmt.Printf("  %d. %s  (ETD %s, ETA %s)\n", i, name, times.Etd, times.Eta)
	}
}

func printStatus(m *trip.Machine) {
	form := m.Form()
	st := m.Status()
	dest, ok := m.Destination()
	if !ok {
		dest = plan.Placeholder
	}
	fmt.Printf("Leg: %s  Date: %s\n", m.Direction(), form.DeliveryDate)
	fmt.Printf("Plate: %q  Destination: %s\n", form.PlateNumber, dest)
	fmt.Printf("Sent: plate=%s etd=%s eta=%s  Tracking: %v\n", st.Plate, st.Etd, st.Eta, m.StreamActive())
}

func reportErr(err error) {
	switch {
	case errors.Is(err, models.ErrNotLoggedIn):
		fmt.Println("You are not logged in.")
	case errors.Is(err, models.ErrInvalidCredentials):
		fmt.Println("Invalid name or password.")
	case errors.Is(err, models.ErrEmptyPlate):
		fmt.Println("Enter a plate number first.")
	case errors.Is(err, models.ErrNoDestination):
		fmt.Println("Select a destination first.")
	case errors.Is(err, models.ErrStatusAlreadySent):
		fmt.Println("Already sent.")
	case errors.Is(err, models.ErrUnstableFix):
		fmt.Println("GPS fix is unstable; try again.")
	case errors.Is(err, models.ErrLocationUnavailable):
		fmt.Println("Location unavailable; try again.")
	case errors.Is(err, models.ErrPermissionDenied):
		fmt.Println("Location permission denied.")
	case errors.Is(err, models.ErrInvalidDate):
		fmt.Println("Date must be YYYY-MM-DD.")
	default:
		fmt.Println("Request failed:", err)
	}
}
