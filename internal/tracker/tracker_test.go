package tracker

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/product-tracker/internal/history"
	"github.com/pricewatch/product-tracker/internal/models"
	"github.com/pricewatch/product-tracker/internal/ratelimit"
)

const foundPage = `<html><body><ul>
	<li class="s-card">
		<div class="s-card__title">Smart Phone X</div>
		<a class="image-treatment" href="https://example.com/item/1"></a>
		<span class="s-card__price">$199.99</span>
	</li>
</ul></body></html>`

const emptyPage = `<html><body><ul></ul></body></html>`

// fakeFetcher records the queries it was asked for and answers from a
// canned map; unknown queries fail.
type fakeFetcher struct {
	calls   []string
	pages   map[string]string
	failing map[string]error

	// onFetch, when set, runs before each answer. Used to observe
	// persistence between iterations.
	onFetch func(query string)
}

func (f *fakeFetcher) Fetch(query string) (string, error) {
	f.calls = append(f.calls, query)
	if f.onFetch != nil {
		f.onFetch(query)
	}
	if err, ok := f.failing[query]; ok {
		return "", err
	}
	if page, ok := f.pages[query]; ok {
		return page, nil
	}
	return emptyPage, nil
}

func newTestTracker(t *testing.T, f Fetcher, limit int) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	tr := New(f, Options{
		HistoryPath: path,
		Limit:       limit,
		Delayer:     ratelimit.NewFixed(time.Millisecond),
	}, slog.Default())
	return tr, path
}

func TestRunProcessesAllQueries(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"Widget A": foundPage}}
	tr, path := newTestTracker(t, f, 0)

	queries := []string{"Widget A", "Widget B", "Widget C"}
	require.NoError(t, tr.Run(context.Background(), queries))

	assert.Equal(t, queries, f.calls)

	rows, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, len(queries))

	assert.True(t, rows[0].IsFound)
	assert.Equal(t, "Smart Phone X", rows[0].ProductName)
	assert.False(t, rows[1].IsFound)
	assert.Equal(t, "Widget B", rows[1].ProductName)
}

func TestRunHonorsLimit(t *testing.T) {
	f := &fakeFetcher{}
	tr, path := newTestTracker(t, f, 1)

	require.NoError(t, tr.Run(context.Background(), []string{"Widget A", "Widget B"}))

	assert.Equal(t, []string{"Widget A"}, f.calls)

	rows, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Widget A", rows[0].ProductName)
}

func TestRunLimitLargerThanListProcessesAll(t *testing.T) {
	f := &fakeFetcher{}
	tr, path := newTestTracker(t, f, 10)

	require.NoError(t, tr.Run(context.Background(), []string{"Widget A", "Widget B"}))

	assert.Len(t, f.calls, 2)

	rows, err := history.Load(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRunRecordsFetchFailureAndContinues(t *testing.T) {
	f := &fakeFetcher{
		failing: map[string]error{"Widget B": errors.New("timed out waiting for search results")},
	}
	tr, path := newTestTracker(t, f, 0)

	require.NoError(t, tr.Run(context.Background(), []string{"Widget A", "Widget B", "Widget C"}))

	assert.Len(t, f.calls, 3)

	rows, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.StatusError, rows[1].Status)
	assert.Equal(t, "Widget B", rows[1].ProductName)
	assert.Equal(t, "timed out waiting for search results", rows[1].Notes)
	assert.False(t, rows[1].IsFound)

	assert.Equal(t, models.StatusOK, rows[0].Status)
	assert.Equal(t, models.StatusOK, rows[2].Status)
}

func TestRunPersistsAfterEveryQuery(t *testing.T) {
	var tr *Tracker
	var path string

	persisted := map[string]int{}
	f := &fakeFetcher{}
	f.onFetch = func(query string) {
		rows, err := history.Load(path)
		require.NoError(t, err)
		persisted[query] = len(rows)
	}
	tr, path = newTestTracker(t, f, 0)

	require.NoError(t, tr.Run(context.Background(), []string{"Widget A", "Widget B", "Widget C"}))

	// Each check must see every previous result already on disk.
	assert.Equal(t, 0, persisted["Widget A"])
	assert.Equal(t, 1, persisted["Widget B"])
	assert.Equal(t, 2, persisted["Widget C"])
}

func TestRunKeepsExistingHistory(t *testing.T) {
	f := &fakeFetcher{}
	tr, path := newTestTracker(t, f, 0)

	existing := models.CheckResult{
		ProductName: "Old Widget",
		Timestamp:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.StatusOK,
		Notes:       "Only auctions or no valid listings found.",
	}
	require.NoError(t, history.Save(path, []models.CheckResult{existing}))

	require.NoError(t, tr.Run(context.Background(), []string{"Widget A"}))

	rows, err := history.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Old Widget", rows[0].ProductName)
	assert.Equal(t, "Widget A", rows[1].ProductName)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	f := &fakeFetcher{}
	tr, path := newTestTracker(t, f, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Run(ctx, []string{"Widget A", "Widget B"})
	assert.ErrorIs(t, err, context.Canceled)

	// The in-flight check is still persisted by the final save.
	rows, loadErr := history.Load(path)
	require.NoError(t, loadErr)
	assert.Len(t, rows, 1)
}
