package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pricewatch/product-tracker/internal/browser"
	"github.com/pricewatch/product-tracker/internal/config"
	"github.com/pricewatch/product-tracker/internal/fetcher"
	"github.com/pricewatch/product-tracker/internal/products"
	"github.com/pricewatch/product-tracker/internal/ratelimit"
	"github.com/pricewatch/product-tracker/internal/report"
	"github.com/pricewatch/product-tracker/internal/tracker"
	"github.com/pricewatch/product-tracker/pkg/logger"
)

func main() {
	var (
		mode         = flag.String("mode", "track", "Mode to run: 'track' to scrape prices, 'plot' to graph price history")
		productsFile = flag.String("products_file", "", "Path to the CSV file containing product queries")
		outputFile   = flag.String("output_file", "", "Path to the CSV file to save historical data (track) or filtered data (plot)")
		historyFile  = flag.String("history_file", "", "Path to the historical data file to read in plot mode")
		delay        = flag.Float64("delay", 0, "Fixed delay in seconds between product checks; overrides delay_min/delay_max")
		delayMin     = flag.Float64("delay_min", 5, "Minimum delay in seconds for random delay between checks")
		delayMax     = flag.Float64("delay_max", 15, "Maximum delay in seconds for random delay between checks")
		limit        = flag.Int("limit", 0, "Limit the number of products to process from the input file")
		headless     = flag.Bool("headless", false, "Run the browser in headless mode (no visible GUI)")
		plotKeyword  = flag.String("plot_keyword", "", "Keyword to use for plotting if mode is 'plot'")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	applyFlags(cfg, *productsFile, *outputFile, *delay, *delayMin, *delayMax, *limit, *headless)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	switch *mode {
	case "track":
		runTrack(cfg, logger)
	case "plot":
		historyPath := *historyFile
		if historyPath == "" {
			historyPath = "historical_products.csv"
		}
		runPlot(cfg, historyPath, *plotKeyword, logger)
	default:
		logger.Error("unknown mode, expected 'track' or 'plot'", "mode", *mode)
	}
}

// applyFlags lets CLI flags override the env-derived config. Only flags the
// user actually set are applied.
func applyFlags(cfg *config.Config, productsFile, outputFile string, delay, delayMin, delayMax float64, limit int, headless bool) {
	if productsFile != "" {
		cfg.Tracker.ProductsFile = productsFile
	}
	if outputFile != "" {
		cfg.Tracker.OutputFile = outputFile
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["delay"] {
		cfg.Tracker.Delay = secondsToDuration(delay)
	}
	if set["delay_min"] {
		cfg.Tracker.DelayMin = secondsToDuration(delayMin)
	}
	if set["delay_max"] {
		cfg.Tracker.DelayMax = secondsToDuration(delayMax)
	}
	if set["limit"] {
		cfg.Tracker.Limit = limit
	}
	if set["headless"] {
		cfg.Browser.Headless = headless
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func runTrack(cfg *config.Config, logger *slog.Logger) {
	logger.Info("starting product tracker", "products_file", cfg.Tracker.ProductsFile, "output_file", cfg.Tracker.OutputFile)

	if !browser.Available() {
		logger.Warn("playwright driver is not installed, web scraping functionality is disabled")
		return
	}

	queries, err := products.Load(cfg.Tracker.ProductsFile)
	if err != nil {
		logger.Error("could not load products", "error", err, "path", cfg.Tracker.ProductsFile)
		return
	}
	if len(queries) == 0 {
		logger.Info("no products to track, please check your input file")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		return
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		logger.Error("failed to open browser page", "error", err)
		return
	}

	var delayer *ratelimit.Delayer
	if cfg.Tracker.Delay > 0 {
		delayer = ratelimit.NewFixed(cfg.Tracker.Delay)
	} else {
		delayer = ratelimit.NewRange(cfg.Tracker.DelayMin, cfg.Tracker.DelayMax)
	}

	t := tracker.New(
		fetcher.New(page, logger.With("component", "fetcher")),
		tracker.Options{
			HistoryPath: cfg.Tracker.OutputFile,
			Limit:       cfg.Tracker.Limit,
			Delayer:     delayer,
		},
		logger.With("component", "tracker"),
	)

	if err := t.Run(ctx, queries); err != nil {
		logger.Error("tracking run ended early", "error", err)
		return
	}

	logger.Info("all products checked")
}

func runPlot(cfg *config.Config, historyPath, keyword string, logger *slog.Logger) {
	if keyword == "" {
		fmt.Print("Enter a product keyword to graph its price history: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		keyword = strings.TrimSpace(line)
	}
	if keyword == "" {
		logger.Info("no keyword provided, exiting")
		return
	}

	if err := report.Run(historyPath, keyword, cfg.Tracker.OutputFile, logger.With("component", "report")); err != nil {
		logger.Error("plotting failed", "error", err)
	}
}
