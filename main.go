package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/va6996/flightfinder/bootstrap"
	"github.com/va6996/flightfinder/config"
	"github.com/va6996/flightfinder/log"
)

// exampleQueries are run in order on every start
var exampleQueries = []string{
	"i am looking for a flight to south africa not more 1000dollar please i am from france?",
	"flight from France to South Africa under 1000 dollars",
}

func main() {
	// 0. Load Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	log.Init(cfg.Log.Level)

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Init App Components using Bootstrap
	app, err := bootstrap.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf(ctx, "Setup failed: %v", err)
	}
	defer app.Close()

	// 2. Run the example queries
	for _, query := range exampleQueries {
		if ctx.Err() != nil {
			log.Info(context.Background(), "Program terminated externally. Exiting...")
			return
		}
		fmt.Printf("\nProcessing query: %s\n", query)
		outcome := app.FlightAgent.ProcessQuery(ctx, query)
		fmt.Printf("Result: %s\n", outcome)
	}
}
