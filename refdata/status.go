package refdata

import "time"

// Status describes where a dataset is in its load lifecycle.
type Status int

const (
	// StatusUnloaded is the implicit state of a dataset that has never been
	// loaded this session.
	StatusUnloaded Status = iota
	// StatusFetching means a network fetch is in progress.
	StatusFetching
	// StatusLoading means cached data is being read from disk.
	StatusLoading
	// StatusLoaded means data is available in memory.
	StatusLoaded
	// StatusError means the last load or fetch attempt failed. The state is
	// not terminal; a later attempt re-enters Fetching or Loading.
	StatusError
	// StatusRemoved means the dataset was explicitly removed and its data
	// cleared.
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusFetching:
		return "fetching"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	case StatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Resource is the dynamic per-key record owned by the Loader. Callers only
// ever see value copies.
type Resource struct {
	Key     string
	Status  Status
	Data    any
	Date    time.Time
	Version string

	// Err holds the last failure for observability. It is cleared on the
	// next successful transition.
	Err error
}
