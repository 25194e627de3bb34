package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	var addr string
	var help bool

	flag.StringVar(&addr, "addr", ":8080", "Address to bind")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	handler, shutdownTelemetry, err := telemetry.Setup(context.Background(), cfg.Telemetry, slog.NewTextHandler(os.Stderr, nil))
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	slog.SetDefault(slog.New(handler))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("telemetry shutdown error", "error", err)
		}
	}()

	if err := runServer(cfg, addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Storefront - Wix catalog, cart and content API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  storefront [-addr :8080]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -addr       Address to bind (default :8080)")
	fmt.Println("  -help, -h   Show this help message")
	fmt.Println()
	fmt.Println("Set WIX_CLIENT_ID (and optionally WIX_API_KEY, WIX_SITE_ID) or MOCKS=true.")
}
