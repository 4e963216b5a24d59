package refdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
)

// DefaultMaxAgeDays is the cache age policy applied when a definition does
// not set MaxAgeDays.
const DefaultMaxAgeDays = 7

var validate = validator.New()

// Prior carries what is already cached for a dataset when a refresh fetch
// begins, so a FetchFunc can issue a conditional request and hand back the
// existing data on a 304.
type Prior struct {
	Data any
	ETag string
}

// Payload is the outcome of a dataset fetch.
type Payload struct {
	Data any

	// Date is the effective timestamp of the data. Zero means "now".
	Date time.Time

	// ETag, when set, is stored alongside the data and offered back to the
	// FetchFunc on the next refresh.
	ETag string

	// Version overrides the definition's cache generation tag for this
	// payload. Empty means the definition's own Version.
	Version string

	// NotModified marks a conditional fetch that was answered with the
	// prior data unchanged.
	NotModified bool
}

// FetchFunc retrieves and parses one dataset. The fetch package provides a
// reusable HTTP implementation; definitions are free to use any other
// transport.
type FetchFunc func(ctx context.Context, prior Prior) (Payload, error)

// Definition is the static description of one externally sourced dataset.
type Definition struct {
	// Key uniquely identifies the dataset and names its cache file.
	Key string `validate:"required"`

	// Name is a human readable label. The core never interprets it.
	Name string

	// Fetch produces the dataset's structured payload.
	Fetch FetchFunc `validate:"required"`

	// OnLoad is invoked after data becomes available, from disk or from a
	// fetch. Returning false marks the load as failed.
	OnLoad func(data any) bool

	// OnRemove is invoked when the dataset is removed.
	OnRemove func()

	// MaxAgeDays is the cache age beyond which a refresh is due. Zero
	// selects DefaultMaxAgeDays.
	MaxAgeDays int `validate:"gte=0"`

	// Version distinguishes cache generations. Changing it orphans cache
	// files written under the previous tag instead of resurrecting them.
	Version string
}

// MaxAge returns the definition's staleness threshold.
func (d Definition) MaxAge() time.Duration {
	days := d.MaxAgeDays
	if days == 0 {
		days = DefaultMaxAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// label returns the human readable name, falling back to the key.
func (d Definition) label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Key
}

// validateDefinition checks a definition before it enters a registry.
func validateDefinition(d Definition) error {
	if err := validate.Struct(d); err != nil {
		return failure.New(ErrInvalidDefinition,
			failure.Message("Dataset definition is invalid"),
			failure.Context{
				"key":   d.Key,
				"error": err.Error(),
			},
		)
	}
	return nil
}
