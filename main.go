package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentencestats/app"
	"sentencestats/internal"
	"sentencestats/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := internal.NewDefaultLogger()
	summary, err := app.NewRunner(appConfig, logger, os.Stdout).Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	log.Printf("Run %s complete: %s, %s", summary.RunID, summary.ChiTrend.ChartPath, summary.Combined.ChartPath)
	if n := summary.Undefined(); n > 0 {
		log.Printf("%d undefined points were marked n/a in the charts", n)
	}
}
