package models

import (
	"time"
)

// TimestampLayout is the wire format for timestamps in the history file.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// CheckResult is one tracking observation for a single product query.
// It is created once per fetch attempt and never mutated after being
// appended to the history.
type CheckResult struct {
	ProductName string    `json:"product_name"`
	IsFound     bool      `json:"is_found"`
	Timestamp   time.Time `json:"timestamp"`
	ProductURL  string    `json:"product_url,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	Price       string    `json:"price,omitempty"`
}

func NewCheckResult(productName string) CheckResult {
	return CheckResult{
		ProductName: productName,
		Timestamp:   time.Now(),
		Status:      StatusOK,
	}
}

// ErrorResult records a failed check for a query. The extractor is never
// consulted for these rows.
func ErrorResult(productName, notes string) CheckResult {
	r := NewCheckResult(productName)
	r.Status = StatusError
	r.Notes = notes
	return r
}
