package csv_test

import (
	"strings"
	"testing"

	pcsv "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/parser/csv"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	in := "\uFEFFLAD23CD, LAD23NM ,RGN23CD\nE06000001,Hartlepool,E12000001\nE06000002,Middlesbrough,E12000001\n"
	p := pcsv.NewParser(pcsv.Options{
		HasHeader: true,
		TrimSpace: true,
		HeaderMap: map[string]string{"LAD23NM": "lad_name"},
	})

	recs, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d, want 0", skipped)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d, want 2", len(recs))
	}
	// BOM and padding must be stripped from header cells.
	if v := recs[0]["LAD23CD"]; v != "E06000001" {
		t.Errorf("LAD23CD=%v, want E06000001", v)
	}
	// HeaderMap renames apply.
	if v := recs[1]["lad_name"]; v != "Middlesbrough" {
		t.Errorf("lad_name=%v, want Middlesbrough", v)
	}
}

func TestParseHeaderless(t *testing.T) {
	t.Parallel()

	in := "tx-1,250000,2024-03-01 00:00\ntx-2,175000,2024-03-02 00:00\n"
	p := pcsv.NewParser(pcsv.Options{
		Columns:   []string{"transaction_id", "price", "date"},
		TrimSpace: true,
	})

	recs, _, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d, want 2", len(recs))
	}
	if v := recs[0]["price"]; v != "250000" {
		t.Errorf("price=%v, want 250000", v)
	}
}

func TestParseSkipsShortRows(t *testing.T) {
	t.Parallel()

	in := "a,b,c\n1,2,3\n4,5\n6,7,8\n"
	p := pcsv.NewParser(pcsv.Options{HasHeader: true})

	recs, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d, want 2", len(recs))
	}
	if skipped != 1 {
		t.Fatalf("skipped=%d, want 1", skipped)
	}
}

func TestParseEmptyCellIsNil(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,\n"
	p := pcsv.NewParser(pcsv.Options{HasHeader: true})

	recs, _, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := recs[0]["b"]; !ok || v != nil {
		t.Fatalf("b=%v (present=%v), want nil", v, ok)
	}
}
