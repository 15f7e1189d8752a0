package export

import (
	"bufio"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

// YAMLWriter buffers records and writes them as one report envelope.
type YAMLWriter struct {
	w    *bufio.Writer
	now  func() time.Time
	recs []extract.Record
}

func newYAMLWriter(w io.Writer, cfg *writerConfig) *YAMLWriter {
	return &YAMLWriter{
		w:   bufio.NewWriter(w),
		now: cfg.now,
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec extract.Record) error {
	w.recs = append(w.recs, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(recs []extract.Record) error {
	w.recs = append(w.recs, recs...)
	return nil
}

// Flush writes the buffered records wrapped in the report envelope.
func (w *YAMLWriter) Flush() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	report := Report{
		ScrapeDate:    w.now(),
		TotalProducts: len(w.recs),
		Products:      w.recs,
	}
	if err := encoder.Encode(report); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
