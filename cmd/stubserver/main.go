// Command stubserver runs the in-memory development backend: the four
// endpoints the driver client talks to, seeded with today's plan table.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"haul-tracker/internal/models"
	"haul-tracker/internal/stub"
)

func timePtr(s string) *string { return &s }

func main() {
	port := os.Getenv("HAUL_STUB_PORT")
	if port == "" {
		port = "3000"
	}
	jwtSecret := os.Getenv("HAUL_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret"
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	drivers := stub.NewDriverRegistry()
	statuses := stub.NewStatusLog()
	locations := stub.NewLocationLog()
	plans := stub.NewPlanTable()

	// Seed the three local dock windows for today so a fresh client has
	// something to select.
	today := time.Now().Format("2006-01-02")
	plans.Seed(today, []models.DestinationPlan{
		{Destination: "YIMM PG LOKAL PO 1", ForwardEtd: timePtr("05:00"), ForwardEta: timePtr("08:00")},
		{Destination: "YIMM PG LOKAL PO 2", ForwardEtd: timePtr("08:00"), ForwardEta: timePtr("13:00")},
		{Destination: "YIMM PG LOKAL PO 3", ForwardEtd: timePtr("14:00"), ForwardEta: timePtr("19:00")},
	})

	handler := stub.NewHandler(drivers, statuses, locations, plans, jwtSecret)
	stub.SetupRoutes(e, handler, jwtSecret)

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
