// Package extract pulls product fields out of candidate DOM nodes using
// ordered strategy chains.
package extract

// Record is one extracted product. Fields are empty strings when no strategy
// produced a value; a Record is immutable once produced. Field order matches
// the export schema.
type Record struct {
	Title     string `json:"title" yaml:"title"`
	Price     string `json:"price" yaml:"price"`
	ImageURL  string `json:"image_url" yaml:"image_url"`
	Hyperlink string `json:"hyperlink" yaml:"hyperlink"`
}

// HasEvidence reports whether the record carries actual product evidence.
// A hyperlink alone proves nothing; such records are discarded.
func (r Record) HasEvidence() bool {
	return r.Title != "" || r.Price != "" || r.ImageURL != ""
}

// DedupKey is the canonical cross-pass identity: the hyperlink when present,
// else the title.
func (r Record) DedupKey() string {
	if r.Hyperlink != "" {
		return r.Hyperlink
	}
	return r.Title
}
