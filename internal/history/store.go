package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pricewatch/product-tracker/internal/models"
)

// Header is the column order of the history file.
var Header = []string{"product_name", "is_found", "timestamp", "product_url", "status", "notes", "price"}

// Load reads the history file at path. A missing file is not an error and
// yields an empty history; an unreadable or malformed file is reported so
// the caller can decide whether to start fresh.
func Load(path string) ([]models.CheckResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]models.CheckResult, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := decode(record)
		if err != nil {
			return nil, fmt.Errorf("history row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Save rewrites the entire history file. It writes to a temp file first and
// renames it into place so a crash mid-write cannot corrupt prior progress.
func Save(path string, rows []models.CheckResult) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write history header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(encode(row)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush history file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}

	return os.Rename(tmp, path)
}

// Append adds row to rows, persists the whole history, and returns the
// extended slice. The returned slice is valid even when persisting fails so
// the next save can retry with the accumulated data.
func Append(path string, rows []models.CheckResult, row models.CheckResult) ([]models.CheckResult, error) {
	rows = append(rows, row)
	if err := Save(path, rows); err != nil {
		return rows, err
	}
	return rows, nil
}

func encode(r models.CheckResult) []string {
	return []string{
		r.ProductName,
		strconv.FormatBool(r.IsFound),
		r.Timestamp.Format(models.TimestampLayout),
		r.ProductURL,
		r.Status,
		r.Notes,
		r.Price,
	}
}

func decode(record []string) (models.CheckResult, error) {
	if len(record) != len(Header) {
		return models.CheckResult{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(record))
	}

	found, err := strconv.ParseBool(record[1])
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("invalid is_found value %q: %w", record[1], err)
	}

	ts, err := time.Parse(models.TimestampLayout, record[2])
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("invalid timestamp %q: %w", record[2], err)
	}

	return models.CheckResult{
		ProductName: record[0],
		IsFound:     found,
		Timestamp:   ts,
		ProductURL:  record[3],
		Status:      record[4],
		Notes:       record[5],
		Price:       record[6],
	}, nil
}
