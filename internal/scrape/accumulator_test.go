package scrape

import (
	"testing"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/extract"
)

func rec(title, href string) extract.Record {
	return extract.Record{Title: title, Hyperlink: href, Price: "$1.00"}
}

func TestMerge_CrossPassReconciliation(t *testing.T) {
	acc := NewAccumulator()

	pass1 := []extract.Record{
		rec("Alpha", "https://shop.example.com/product/a"),
		rec("Beta", "https://shop.example.com/product/b"),
		rec("Gamma", "https://shop.example.com/product/c"),
	}
	pass2 := []extract.Record{
		rec("Beta", "https://shop.example.com/product/b"),
		rec("Gamma", "https://shop.example.com/product/c"),
		rec("Delta", "https://shop.example.com/product/d"),
	}

	if added := acc.Merge(pass1); len(added) != 3 {
		t.Fatalf("pass 1: expected 3 added, got %d", len(added))
	}
	added := acc.Merge(pass2)
	if len(added) != 1 || added[0].Title != "Delta" {
		t.Fatalf("pass 2: expected only Delta added, got %+v", added)
	}
	if acc.Len() != 4 {
		t.Fatalf("expected 4 accumulated records, got %d", acc.Len())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	acc := NewAccumulator()
	pass := []extract.Record{
		rec("Alpha", "https://shop.example.com/product/a"),
		rec("Beta", "https://shop.example.com/product/b"),
	}

	acc.Merge(pass)
	if added := acc.Merge(pass); len(added) != 0 {
		t.Fatalf("second merge of same pass must add nothing, added %d", len(added))
	}
	if acc.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", acc.Len())
	}
}

func TestMerge_TitleFallbackKey(t *testing.T) {
	acc := NewAccumulator()
	pass := []extract.Record{
		{Title: "Brand X Cereal 12oz", Price: "$3.99"},
		{Title: "Brand X Cereal 12oz", ImageURL: "https://cdn.example.com/cereal.jpg"},
	}

	if added := acc.Merge(pass); len(added) != 1 {
		t.Fatalf("records sharing a title must collapse, added %d", len(added))
	}
}

func TestMerge_KeylessRecordDropped(t *testing.T) {
	acc := NewAccumulator()
	pass := []extract.Record{
		{Price: "$2.49", ImageURL: "https://cdn.example.com/x.jpg"},
	}

	if added := acc.Merge(pass); len(added) != 0 {
		t.Fatalf("record with neither hyperlink nor title must be dropped, added %d", len(added))
	}
}

func TestMerge_AllKeysUnique(t *testing.T) {
	acc := NewAccumulator()
	acc.Merge([]extract.Record{
		rec("Alpha", "https://shop.example.com/product/a"),
		rec("Alpha Again", "https://shop.example.com/product/a"),
		{Title: "Solo Title", Price: "$1"},
		{Title: "Solo Title", Price: "$2"},
	})

	seen := make(map[string]struct{})
	for _, r := range acc.Records() {
		key := r.DedupKey()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate dedup key in final collection: %q", key)
		}
		seen[key] = struct{}{}
	}
}
