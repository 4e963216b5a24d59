package extensions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseWWFF(t *testing.T) {
	input := "reference,name,program,dxcc\n" +
		"ONFF-0001,Kalmthoutse Heide,ONFF,Belgium\n" +
		"GFF-0010,Ashdown Forest,GFF\n" +
		"short\n" +
		"DLFF-0001,Bayerischer Wald,DLFF,Germany\n"

	data, err := parseWWFF([]byte(input))
	if err != nil {
		t.Fatalf("parseWWFF() error = %v", err)
	}

	want := []map[string]any{
		{"reference": "ONFF-0001", "name": "Kalmthoutse Heide", "program": "ONFF", "dxcc": "Belgium"},
		{"reference": "GFF-0010", "name": "Ashdown Forest", "program": "GFF"},
		{"reference": "DLFF-0001", "name": "Bayerischer Wald", "program": "DLFF", "dxcc": "Germany"},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("parseWWFF() mismatch (-want +got):\n%s", diff)
	}
}

func TestWWFFDirectoryOnLoad(t *testing.T) {
	d := NewWWFFDirectory()
	data, err := parseWWFF([]byte("reference,name\nONFF-0001,Kalmthoutse Heide\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !d.onLoad(data) {
		t.Fatal("onLoad() = false, want true")
	}

	ref, ok := d.Lookup("ONFF-0001")
	if !ok || ref.Name != "Kalmthoutse Heide" {
		t.Errorf("Lookup(ONFF-0001) = %+v, %v", ref, ok)
	}
	if _, ok := d.Lookup("ONFF-9999"); ok {
		t.Error("Lookup(ONFF-9999) found an unknown reference")
	}
}
