// Package export serializes scraped product records to the supported
// output formats.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatYAML  Format = "yaml"
)

// Report is the envelope the JSON and YAML formats wrap the records in.
type Report struct {
	ScrapeDate    time.Time        `json:"scrape_date" yaml:"scrape_date"`
	TotalProducts int              `json:"total_products" yaml:"total_products"`
	Products      []extract.Record `json:"products" yaml:"products"`
}

// Writer handles output serialization. Records buffer until Flush for the
// envelope formats; JSONL and CSV stream as they go.
type Writer interface {
	// Write outputs a single record.
	Write(rec extract.Record) error

	// WriteAll outputs multiple records.
	WriteAll(recs []extract.Record) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	now    func() time.Time
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithClock overrides the scrape_date timestamp source.
func WithClock(now func() time.Time) WriterOption {
	return func(c *writerConfig) {
		c.now = now
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return newJSONWriter(w, cfg), nil
	case FormatJSONL:
		return newJSONLWriter(w), nil
	case FormatCSV:
		return newCSVWriter(w), nil
	case FormatYAML:
		return newYAMLWriter(w, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
