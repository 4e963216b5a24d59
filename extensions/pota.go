package extensions

import (
	"encoding/json"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/marcinplaczek/app-polo/log"
	"github.com/marcinplaczek/app-polo/refdata"
)

const potaParksURL = "https://pota.app/all_parks_ext.json"

// Park is one POTA reference entry.
type Park struct {
	Reference string  `mapstructure:"reference"`
	Name      string  `mapstructure:"name"`
	Grid      string  `mapstructure:"grid"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Active    bool    `mapstructure:"active"`
}

// POTADirectory keeps the Parks on the Air reference list in memory, keyed
// by reference (e.g. "US-0001"), for validating and enriching logged
// contacts.
type POTADirectory struct {
	url string

	mu    sync.RWMutex
	parks map[string]Park
}

// NewPOTADirectory creates an empty directory pointed at the official park
// list.
func NewPOTADirectory() *POTADirectory {
	return &POTADirectory{url: potaParksURL}
}

// Definition wires the directory into the sync pipeline. The park list is
// large and changes rarely, so it ages out monthly.
func (d *POTADirectory) Definition() refdata.Definition {
	return refdata.Definition{
		Key:        "pota-all-parks",
		Name:       "POTA park directory",
		Fetch:      httpFetch(d.url, parseParks),
		OnLoad:     d.onLoad,
		OnRemove:   d.onRemove,
		MaxAgeDays: 30,
		Version:    "2",
	}
}

// Lookup returns the park for a reference.
func (d *POTADirectory) Lookup(reference string) (Park, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.parks[reference]
	return p, ok
}

// Len returns the number of known parks.
func (d *POTADirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.parks)
}

func (d *POTADirectory) onLoad(data any) bool {
	var parks []Park
	if err := mapstructure.Decode(data, &parks); err != nil {
		log.Warn("POTA park data has unexpected shape", "error", err)
		return false
	}

	byRef := make(map[string]Park, len(parks))
	for _, p := range parks {
		if p.Reference == "" {
			continue
		}
		byRef[p.Reference] = p
	}

	d.mu.Lock()
	d.parks = byRef
	d.mu.Unlock()
	return true
}

func (d *POTADirectory) onRemove() {
	d.mu.Lock()
	d.parks = nil
	d.mu.Unlock()
}

// parseParks decodes the park list into its generic JSON form. Typing
// happens in onLoad so data read back from the cache file takes the same
// path as freshly fetched data.
func parseParks(body []byte) (any, error) {
	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
