package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/product-tracker/internal/history"
	"github.com/pricewatch/product-tracker/internal/models"
)

// Row is a history row with its price normalized to a decimal. PriceClean
// is nil when the raw price is absent or unparseable.
type Row struct {
	models.CheckResult
	PriceClean *decimal.Decimal
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// CleanPrice strips currency formatting from a raw price string and parses
// what remains as a decimal.
func CleanPrice(raw string) *decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// Filter keeps rows whose product name contains keyword (case-insensitive
// substring) and returns them sorted ascending by timestamp, with cleaned
// prices attached.
func Filter(rows []models.CheckResult, keyword string) []Row {
	kw := strings.ToLower(keyword)

	var out []Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.ProductName), kw) {
			out = append(out, Row{CheckResult: r, PriceClean: CleanPrice(r.Price)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

// Run loads the history, filters it by keyword, writes the filtered rows to
// outputPath and renders a price-over-time chart next to it. Empty results
// at any stage are reported and end the run without error.
func Run(historyPath, keyword, outputPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default().With("component", "report")
	}

	rows, err := history.Load(historyPath)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(rows) == 0 {
		logger.Info("history file is missing or empty, nothing to plot", "path", historyPath)
		return nil
	}

	filtered := Filter(rows, keyword)
	if len(filtered) == 0 {
		logger.Info("no matching product found", "keyword", keyword)
		return nil
	}

	if err := writeCSV(outputPath, filtered); err != nil {
		return fmt.Errorf("failed to write filtered data: %w", err)
	}
	logger.Info("filtered data saved", "path", outputPath, "rows", len(filtered))

	chartPath := ChartPath(outputPath)
	if err := renderChart(chartPath, keyword, filtered); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	logger.Info("chart rendered", "path", chartPath)

	return nil
}

// ChartPath derives the chart file location from the filtered-data path.
func ChartPath(outputPath string) string {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return base + "_chart.html"
}

func writeCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append(append([]string{}, history.Header...), "price_clean")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		priceClean := ""
		if r.PriceClean != nil {
			priceClean = r.PriceClean.String()
		}
		record := []string{
			r.ProductName,
			strconv.FormatBool(r.IsFound),
			r.Timestamp.Format(models.TimestampLayout),
			r.ProductURL,
			r.Status,
			r.Notes,
			r.Price,
			priceClean,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

func renderChart(path, keyword string, rows []Row) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Price History: %s", keyword),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Timestamp",
			AxisLabel: &opts.AxisLabel{
				Show:   opts.Bool(true),
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Price (USD)",
		}),
	)

	x := make([]string, 0, len(rows))
	y := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		x = append(x, r.Timestamp.Format(models.TimestampLayout))
		if r.PriceClean != nil {
			value, _ := r.PriceClean.Float64()
			y = append(y, opts.LineData{Value: value})
		} else {
			// Missing price renders as a gap, not a crash.
			y = append(y, opts.LineData{Value: "-"})
		}
	}

	line.SetXAxis(x).AddSeries("price", y,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}
