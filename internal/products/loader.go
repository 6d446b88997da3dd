package products

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// queryColumn is the only accepted header name for the query source column.
const queryColumn = "product"

var ErrMissingColumn = errors.New(`products file must contain a column named "product"`)

// Load reads product queries from a CSV file. The file must have a header
// row containing a "product" column; values from that column are returned
// in row order with empty cells skipped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open products file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read products file: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrMissingColumn
	}

	col := -1
	for i, name := range records[0] {
		if strings.TrimSpace(name) == queryColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingColumn
	}

	queries := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if col >= len(record) {
			continue
		}
		query := strings.TrimSpace(record[col])
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}

	return queries, nil
}
