package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/product-tracker/internal/extractor"
	"github.com/pricewatch/product-tracker/internal/history"
	"github.com/pricewatch/product-tracker/internal/models"
	"github.com/pricewatch/product-tracker/internal/ratelimit"
)

// Fetcher loads the rendered search results markup for one product query.
type Fetcher interface {
	Fetch(query string) (string, error)
}

type Options struct {
	HistoryPath string
	// Limit caps the number of queries processed when positive.
	Limit   int
	Delayer *ratelimit.Delayer
}

// Tracker runs the sequential check loop: fetch, extract, persist, wait.
// It owns no browser state itself; the session behind the Fetcher is
// created and torn down by the caller.
type Tracker struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

func New(f Fetcher, opts Options, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default().With("component", "tracker")
	}
	if opts.Delayer == nil {
		opts.Delayer = ratelimit.NewRange(5*time.Second, 15*time.Second)
	}
	return &Tracker{
		fetcher: f,
		opts:    opts,
		logger:  logger,
	}
}

// Run checks every query in order, appending one CheckResult per query to
// the history file. Fetch failures are recorded as error rows and never
// stop the run. A final save happens on every exit path so an early return
// loses at most the in-flight check.
func (t *Tracker) Run(ctx context.Context, queries []string) error {
	logger := t.logger.With("run_id", uuid.NewString())

	rows, err := history.Load(t.opts.HistoryPath)
	if err != nil {
		logger.Warn("could not read existing history, starting empty", "error", err)
		rows = nil
	} else if len(rows) > 0 {
		logger.Info("loaded existing history", "rows", len(rows), "path", t.opts.HistoryPath)
	}

	defer func() {
		if err := history.Save(t.opts.HistoryPath, rows); err != nil {
			logger.Error("final history save failed", "error", err)
		} else {
			logger.Info("final save complete", "rows", len(rows))
		}
	}()

	if t.opts.Limit > 0 && t.opts.Limit < len(queries) {
		logger.Info("limiting processing", "limit", t.opts.Limit)
		queries = queries[:t.opts.Limit]
	}

	for i, query := range queries {
		logger.Info("checking product", "index", i+1, "total", len(queries), "query", query)

		row := t.check(query)
		logger.Info("check finished", "found", row.IsFound, "status", row.Status, "notes", row.Notes)

		rows, err = history.Append(t.opts.HistoryPath, rows, row)
		if err != nil {
			// Tolerated: the next append retries with accumulated rows.
			logger.Error("could not save history", "error", err, "path", t.opts.HistoryPath)
		}

		if err := t.opts.Delayer.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (t *Tracker) check(query string) models.CheckResult {
	html, err := t.fetcher.Fetch(query)
	if err != nil {
		return models.ErrorResult(query, err.Error())
	}

	row, err := extractor.Extract(html, query)
	if err != nil {
		return models.ErrorResult(query, err.Error())
	}
	return row
}
