package extensions

import (
	"bufio"
	"bytes"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/marcinplaczek/app-polo/log"
	"github.com/marcinplaczek/app-polo/refdata"
)

// The community notes file is published as a Dropbox share link; the
// fetcher rewrites it to the direct-download form.
const callNotesURL = "https://www.dropbox.com/s/ham2k/ham2k-notes.txt?dl=0"

// CallNotes keeps per-call-sign annotations in memory so the logging form
// can surface them while a contact is being entered. The source file is
// line oriented: a call sign followed by free text, '#' starting a comment.
type CallNotes struct {
	url string

	mu    sync.RWMutex
	notes map[string][]string
}

// NewCallNotes creates an empty notes table pointed at the community notes
// file.
func NewCallNotes() *CallNotes {
	return &CallNotes{url: callNotesURL}
}

// Definition wires the notes file into the sync pipeline. Notes change
// often, so they age out weekly.
func (c *CallNotes) Definition() refdata.Definition {
	return refdata.Definition{
		Key:        "call-notes",
		Name:       "Call sign notes",
		Fetch:      httpFetch(c.url, parseCallNotes),
		OnLoad:     c.onLoad,
		OnRemove:   c.onRemove,
		MaxAgeDays: 7,
	}
}

// Lookup returns the notes recorded for a call sign.
func (c *CallNotes) Lookup(call string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notes[strings.ToUpper(call)]
}

func (c *CallNotes) onLoad(data any) bool {
	var notes map[string][]string
	if err := mapstructure.Decode(data, &notes); err != nil {
		log.Warn("call notes data has unexpected shape", "error", err)
		return false
	}

	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
	return true
}

func (c *CallNotes) onRemove() {
	c.mu.Lock()
	c.notes = nil
	c.mu.Unlock()
}

// parseCallNotes reads the line-oriented notes format into its generic
// JSON-compatible form: call sign, whitespace, note text. Blank lines and
// '#' comments are skipped; calls are folded to upper case.
func parseCallNotes(body []byte) (any, error) {
	notes := make(map[string]any)

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		i := strings.IndexAny(line, " \t")
		if i < 0 {
			continue
		}
		call := strings.ToUpper(line[:i])
		note := strings.TrimSpace(line[i+1:])
		if note == "" {
			continue
		}

		existing, _ := notes[call].([]string)
		notes[call] = append(existing, note)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
