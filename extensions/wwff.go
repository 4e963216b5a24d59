package extensions

import (
	"bytes"
	"encoding/csv"
	"io"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/marcinplaczek/app-polo/log"
	"github.com/marcinplaczek/app-polo/refdata"
)

const wwffDirectoryURL = "https://wwff.co/wwff-data/wwff_directory.csv"

// Reference is one WWFF flora-fauna reference entry.
type Reference struct {
	Reference string `mapstructure:"reference"`
	Name      string `mapstructure:"name"`
	Program   string `mapstructure:"program"`
	DXCC      string `mapstructure:"dxcc"`
}

// WWFFDirectory keeps the World Wide Flora & Fauna reference list in
// memory, keyed by reference (e.g. "ONFF-0001").
type WWFFDirectory struct {
	url string

	mu   sync.RWMutex
	refs map[string]Reference
}

// NewWWFFDirectory creates an empty directory pointed at the official WWFF
// directory export.
func NewWWFFDirectory() *WWFFDirectory {
	return &WWFFDirectory{url: wwffDirectoryURL}
}

// Definition wires the directory into the sync pipeline.
func (d *WWFFDirectory) Definition() refdata.Definition {
	return refdata.Definition{
		Key:        "wwff-directory",
		Name:       "WWFF reference directory",
		Fetch:      httpFetch(d.url, parseWWFF),
		OnLoad:     d.onLoad,
		OnRemove:   d.onRemove,
		MaxAgeDays: 30,
	}
}

// Lookup returns the entry for a reference.
func (d *WWFFDirectory) Lookup(reference string) (Reference, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.refs[reference]
	return r, ok
}

// Len returns the number of known references.
func (d *WWFFDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.refs)
}

func (d *WWFFDirectory) onLoad(data any) bool {
	var refs []Reference
	if err := mapstructure.Decode(data, &refs); err != nil {
		log.Warn("WWFF directory data has unexpected shape", "error", err)
		return false
	}

	byRef := make(map[string]Reference, len(refs))
	for _, r := range refs {
		if r.Reference == "" {
			continue
		}
		byRef[r.Reference] = r
	}

	d.mu.Lock()
	d.refs = byRef
	d.mu.Unlock()
	return true
}

func (d *WWFFDirectory) onRemove() {
	d.mu.Lock()
	d.refs = nil
	d.mu.Unlock()
}

// parseWWFF decodes the CSV export into its generic JSON-compatible form.
// Expected columns: reference, name, program, dxcc. The header row and rows
// with too few fields are skipped.
func parseWWFF(body []byte) (any, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	var entries []map[string]any
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		if len(record) < 2 {
			continue
		}

		entry := map[string]any{
			"reference": record[0],
			"name":      record[1],
		}
		if len(record) > 2 {
			entry["program"] = record[2]
		}
		if len(record) > 3 {
			entry["dxcc"] = record[3]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
