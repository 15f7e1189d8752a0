package export

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

// JSONWriter buffers records and writes them as one report envelope.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	now    func() time.Time
	recs   []extract.Record
}

func newJSONWriter(w io.Writer, cfg *writerConfig) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: cfg.pretty,
		indent: cfg.indent,
		now:    cfg.now,
	}
}

// Write buffers a single record.
func (w *JSONWriter) Write(rec extract.Record) error {
	w.recs = append(w.recs, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *JSONWriter) WriteAll(recs []extract.Record) error {
	w.recs = append(w.recs, recs...)
	return nil
}

// Flush writes the buffered records wrapped in the report envelope.
func (w *JSONWriter) Flush() error {
	report := Report{
		ScrapeDate:    w.now(),
		TotalProducts: len(w.recs),
		Products:      w.recs,
	}

	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(report, "", w.indent)
	} else {
		output, err = json.Marshal(report)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON, one record per line.
type JSONLWriter struct {
	w *bufio.Writer
}

func newJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(rec extract.Record) error {
	output, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple records as JSON lines.
func (w *JSONLWriter) WriteAll(recs []extract.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
