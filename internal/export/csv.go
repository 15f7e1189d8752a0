package export

import (
	"encoding/csv"
	"io"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

// csvHeader matches the record field order.
var csvHeader = []string{"title", "price", "image_url", "hyperlink"}

// CSVWriter writes records as tabular, spreadsheet-friendly CSV.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

func newCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes a single record row, emitting the header first if needed.
func (w *CSVWriter) Write(rec extract.Record) error {
	if !w.wroteHeader {
		if err := w.w.Write(csvHeader); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	return w.w.Write([]string{rec.Title, rec.Price, rec.ImageURL, rec.Hyperlink})
}

// WriteAll writes multiple record rows.
func (w *CSVWriter) WriteAll(recs []extract.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows.
func (w *CSVWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.Flush()
}
