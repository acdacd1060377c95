package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"coinfolio-api/internal/cli"
	"coinfolio-api/internal/config"
	"coinfolio-api/pkg/coingecko"
	"coinfolio-api/pkg/quotes"
)

const (
	priceInterval   = 2 * time.Minute  // Spot price monitoring interval
	historyInterval = 10 * time.Minute // Market chart monitoring interval
	apiTimeout      = 8 * time.Second  // Timeout for individual API calls
	shutdownTimeout = 10 * time.Second // Grace period for shutdown
)

var monitoredCoins = []string{"bitcoin", "ethereum", "solana"}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting quote monitor...")

	// The monitor stays usable without a config file: built-in defaults hit
	// the public API.
	configPath := "etc/coinfolio.yaml"
	appCfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("[main] Warning: Failed to load app config: %v", err)
		log.Printf("[main] Falling back to built-in defaults")
		appCfg = &config.Config{Env: "test"}
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(appCfg) {
		log.Printf("  - %s", line)
	}

	quotesCfg := appCfg.Quotes.Value
	quotesPath := appCfg.Quotes.File
	if quotesCfg == nil {
		quotesCfg = quotes.DefaultConfig()
		if quotesPath == "" {
			quotesPath = "built-in defaults"
		}
	}

	log.Printf("  - Quotes Config Path: %s", quotesPath)
	log.Printf("  - Monitored Coins: %v", monitoredCoins)
	log.Printf("  - Monitoring Intervals: price=%s, history=%s", priceInterval, historyInterval)

	client := quotesCfg.BuildClient()
	currencies := quotesCfg.Currencies

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runPriceMonitor(ctx, client, currencies)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runHistoryMonitor(ctx, client, currencies)
	}()

	log.Println("[main] Quote monitor started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	// Let in-flight probes finish, but never hang the shutdown.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[main] All tasks stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Quote monitor stopped")
}

// runPriceMonitor polls the spot price endpoint on a schedule
func runPriceMonitor(ctx context.Context, client *coingecko.Client, currencies []string) {
	ticker := time.NewTicker(priceInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	monitorPrices(ctx, client, currencies)

	for {
		select {
		case <-ctx.Done():
			log.Println("[prices] Stopping price monitor")
			return
		case <-ticker.C:
			monitorPrices(ctx, client, currencies)
		}
	}
}

// runHistoryMonitor polls the market chart endpoint on a schedule
func runHistoryMonitor(ctx context.Context, client *coingecko.Client, currencies []string) {
	ticker := time.NewTicker(historyInterval)
	defer ticker.Stop()

	// Run once immediately on startup
	monitorHistory(ctx, client, currencies)

	for {
		select {
		case <-ctx.Done():
			log.Println("[history] Stopping history monitor")
			return
		case <-ticker.C:
			monitorHistory(ctx, client, currencies)
		}
	}
}

// monitorPrices fetches spot prices for the monitored coins and logs results
func monitorPrices(parentCtx context.Context, client *coingecko.Client, currencies []string) {
	if parentCtx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(parentCtx, apiTimeout)
	defer cancel()

	start := time.Now()
	prices, err := client.SimplePrices(ctx, monitoredCoins, currencies)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("[prices.simple_price] [ERROR] %v, took %dms", err, elapsed.Milliseconds())
		return
	}

	log.Printf("[prices.simple_price] [OK] %d coins priced, took %dms", len(prices), elapsed.Milliseconds())

	for _, coin := range monitoredCoins {
		quote, ok := prices[coin]
		if !ok {
			log.Printf("  - %s: [WARN] missing from response", coin)
			continue
		}
		for _, currency := range currencies {
			price, ok := quote[currency]
			if !ok {
				log.Printf("  - %s/%s: [WARN] missing currency", coin, currency)
				continue
			}
			if price <= 0 {
				log.Printf("  - %s/%s: [WARN] invalid price=%f", coin, currency, price)
				continue
			}
			log.Printf("  - %s/%s: %.2f", coin, currency, price)
		}
	}
}

// monitorHistory fetches the 7-day chart for each monitored coin and logs results
func monitorHistory(parentCtx context.Context, client *coingecko.Client, currencies []string) {
	if parentCtx.Err() != nil {
		return
	}

	currency := "usd"
	if len(currencies) > 0 {
		currency = currencies[0]
	}

	for _, coin := range monitoredCoins {
		func(id string) {
			ctx, cancel := context.WithTimeout(parentCtx, apiTimeout)
			defer cancel()

			start := time.Now()
			points, err := client.MarketChart(ctx, id, currency, "7")
			elapsed := time.Since(start)

			if err != nil {
				log.Printf("[history.market_chart.%s] [ERROR] %v, took %dms", id, err, elapsed.Milliseconds())
				return
			}

			if len(points) == 0 {
				log.Printf("[history.market_chart.%s] [WARN] empty series, took %dms", id, elapsed.Milliseconds())
				return
			}

			first := points[0]
			last := points[len(points)-1]
			log.Printf("[history.market_chart.%s] [OK] %d points, span %s -> %s, took %dms",
				id,
				len(points),
				time.UnixMilli(first.Timestamp).UTC().Format(time.RFC3339),
				time.UnixMilli(last.Timestamp).UTC().Format(time.RFC3339),
				elapsed.Milliseconds())
		}(coin)
	}
}
