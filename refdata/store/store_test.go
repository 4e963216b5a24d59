package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	date := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	in := Envelope{
		Data: map[string]any{
			"parks": []any{map[string]any{"reference": "US-0001"}},
		},
		Date: date,
		ETag: `"abc"`,
	}
	if err := s.Write("pota-all-parks", "2", in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out, err := s.Read("pota-all-parks", "2")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMissingFile(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Read("never-written", "")
	if err == nil {
		t.Fatal("Read() error = nil, want failure")
	}
	if code := failure.CodeOf(err); code != ErrStorageFailed {
		t.Errorf("Read() error code = %v, want %v", code, ErrStorageFailed)
	}
}

func TestReadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := os.WriteFile(s.Path("broken", ""), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Read("broken", "")
	if err == nil {
		t.Fatal("Read() error = nil, want failure")
	}
	if code := failure.CodeOf(err); code != ErrStorageFailed {
		t.Errorf("Read() error code = %v, want %v", code, ErrStorageFailed)
	}
}

func TestRemoveMissingFileIsNoOp(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Remove("never-written", ""); err != nil {
		t.Errorf("Remove() error = %v, want nil", err)
	}
}

func TestRemoveDeletesFile(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Write("call-notes", "", Envelope{Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("call-notes", ""); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Exists("call-notes", "") {
		t.Error("cache file still exists after Remove()")
	}
}

func TestPathVersioning(t *testing.T) {
	s := New(filepath.Join(os.TempDir(), "polo-test"))

	tests := []struct {
		name    string
		key     string
		version string
		want    string
	}{
		{
			name: "bare key",
			key:  "pota-all-parks",
			want: "pota-all-parks.json",
		},
		{
			name:    "versioned key",
			key:     "pota-all-parks",
			version: "2",
			want:    "pota-all-parks-2.json",
		},
		{
			name: "unsafe characters are replaced",
			key:  "notes/../../etc",
			want: "notes_._._etc.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filepath.Base(s.Path(tt.key, tt.version))
			if got != tt.want {
				t.Errorf("Path() basename = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionChangeCannotCollide(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Write("parks", "1", Envelope{Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("parks", "2"); err == nil {
		t.Error("Read() under a new version tag resurrected old data")
	}
}
