package refdata

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/marcinplaczek/app-polo/log"
	"github.com/marcinplaczek/app-polo/refdata/store"
)

// LoadOptions controls how EnsureLoaded resolves a dataset.
type LoadOptions struct {
	// Force refetches even when data is already loaded or the cache is
	// fresh.
	Force bool

	// PreferNotice defers any required download to explicit user consent: a
	// notice is raised on the board instead of fetching, and EnsureLoaded
	// returns without data.
	PreferNotice bool
}

// Loader is the freshness and load orchestrator. It owns the per-key status
// table and decides, per dataset, whether to use the cache, trigger a fetch,
// or raise a notice.
type Loader struct {
	registry *Registry
	store    *store.Store
	board    *Noticeboard
	onChange func(Resource)

	group singleflight.Group

	mu    sync.Mutex
	state map[string]*Resource
	locks map[string]*sync.Mutex
}

// NewLoader creates a loader over the given registry, cache store and
// noticeboard.
func NewLoader(reg *Registry, st *store.Store, board *Noticeboard) *Loader {
	return &Loader{
		registry: reg,
		store:    st,
		board:    board,
		state:    make(map[string]*Resource),
		locks:    make(map[string]*sync.Mutex),
	}
}

// OnStatusChange installs an observer that receives a snapshot after every
// status transition. Set it before the loader is used; it is not safe to
// swap while loads are in flight.
func (l *Loader) OnStatusChange(fn func(Resource)) {
	l.onChange = fn
}

// Status returns a snapshot of the dataset's current state. Keys never
// touched this session report StatusUnloaded.
func (l *Loader) Status(key string) Resource {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r, ok := l.state[key]; ok {
		return *r
	}
	return Resource{Key: key, Status: StatusUnloaded}
}

// Statuses returns snapshots for every key touched this session, ordered by
// key.
func (l *Loader) Statuses() []Resource {
	l.mu.Lock()
	snaps := lo.MapToSlice(l.state, func(_ string, r *Resource) Resource { return *r })
	l.mu.Unlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Key < snaps[j].Key })
	return snaps
}

// EnsureLoaded makes the dataset's data available, preferring in-memory
// state, then a fresh cache file, then a fetch (or a consent notice when
// opts.PreferNotice is set). With Force unset a dataset is fetched at most
// once per session; concurrent calls for the same key share one underlying
// load.
//
// A deferred-to-notice load returns (nil, nil): no data, but no failure.
func (l *Loader) EnsureLoaded(ctx context.Context, key string, opts LoadOptions) (any, error) {
	def, err := l.registry.Get(key)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if snap := l.Status(key); snap.Status == StatusLoaded && snap.Data != nil {
			return snap.Data, nil
		}
	}

	data, err, _ := l.group.Do(key, func() (any, error) {
		mu := l.keyLock(key)
		mu.Lock()
		defer mu.Unlock()
		return l.load(ctx, def, opts)
	})
	return data, err
}

// FetchNow unconditionally fetches the dataset, persists it and updates the
// status, bypassing any cache freshness check.
func (l *Loader) FetchNow(ctx context.Context, key string) (any, error) {
	def, err := l.registry.Get(key)
	if err != nil {
		return nil, err
	}

	mu := l.keyLock(key)
	mu.Lock()
	defer mu.Unlock()
	return l.fetch(ctx, def)
}

// Remove deletes the dataset's cache file, runs the OnRemove hook and clears
// the in-memory data. Removing a dataset that has no cache file is not an
// error; removing an unregistered key is.
func (l *Loader) Remove(ctx context.Context, key string) error {
	def, err := l.registry.Get(key)
	if err != nil {
		return err
	}

	mu := l.keyLock(key)
	mu.Lock()
	defer mu.Unlock()

	if err := l.store.Remove(def.Key, def.Version); err != nil {
		l.update(key, func(r *Resource) {
			r.Status = StatusError
			r.Err = err
		})
		return err
	}

	if def.OnRemove != nil {
		def.OnRemove()
	}
	l.board.Dismiss(key)

	l.update(key, func(r *Resource) {
		r.Status = StatusRemoved
		r.Data = nil
		r.Err = nil
	})
	return nil
}

// SyncAll drives EnsureLoaded for every registered dataset, one at a time so
// downloads and startup notices are not stampeded. A failure in one dataset
// does not abort the others; failures are returned keyed by dataset.
func (l *Loader) SyncAll(ctx context.Context, opts LoadOptions) map[string]error {
	failures := make(map[string]error)
	for _, def := range l.registry.List() {
		if _, err := l.EnsureLoaded(ctx, def.Key, opts); err != nil {
			failures[def.Key] = err
		}
	}
	return failures
}

// load resolves one dataset while its key lock is held.
func (l *Loader) load(ctx context.Context, def Definition, opts LoadOptions) (any, error) {
	if opts.Force {
		return l.fetchOrNotice(ctx, def, opts, "needs to be refreshed")
	}

	env, err := l.store.Read(def.Key, def.Version)
	if err != nil {
		// A missing file and a corrupt file take the same path; the cause
		// only survives in the log and the notice text.
		log.Debug("dataset cache unavailable", "key", def.Key, "error", err)
		return l.fetchOrNotice(ctx, def, opts, "has not been downloaded yet")
	}

	if age := time.Since(env.Date); age > def.MaxAge() {
		days := int(age.Hours() / 24)
		return l.fetchOrNotice(ctx, def, opts, fmt.Sprintf("is %d days old", days))
	}

	l.update(def.Key, func(r *Resource) {
		r.Status = StatusLoading
	})

	if err := l.runOnLoad(def, env.Data); err != nil {
		l.fail(def.Key, err)
		return nil, err
	}

	l.update(def.Key, func(r *Resource) {
		r.Status = StatusLoaded
		r.Data = env.Data
		r.Date = env.Date
		r.Version = env.Version
		r.Err = nil
	})
	return env.Data, nil
}

// fetchOrNotice either fetches immediately or, under PreferNotice, raises a
// consent notice whose action performs the deferred fetch.
func (l *Loader) fetchOrNotice(ctx context.Context, def Definition, opts LoadOptions, reason string) (any, error) {
	if opts.PreferNotice {
		key := def.Key
		l.board.Raise(Notice{
			Key:         key,
			Message:     fmt.Sprintf("%s %s.", def.label(), reason),
			ActionLabel: "Download",
			Action: func(ctx context.Context) error {
				_, err := l.FetchNow(ctx, key)
				return err
			},
		})
		return nil, nil
	}
	return l.fetch(ctx, def)
}

// fetch runs the definition's FetchFunc, persists the payload and completes
// the status transition. The key lock must be held.
func (l *Loader) fetch(ctx context.Context, def Definition) (any, error) {
	l.update(def.Key, func(r *Resource) {
		r.Status = StatusFetching
	})

	var prior Prior
	if env, err := l.store.Read(def.Key, def.Version); err == nil {
		prior = Prior{Data: env.Data, ETag: env.ETag}
	}

	payload, err := def.Fetch(ctx, prior)
	if err != nil {
		l.fail(def.Key, err)
		log.Warn("dataset fetch failed", "key", def.Key, "error", err)
		return nil, err
	}

	date := payload.Date
	if date.IsZero() {
		date = time.Now()
	}
	version := payload.Version
	if version == "" {
		version = def.Version
	}

	env := store.Envelope{
		Data:    payload.Data,
		Date:    date,
		ETag:    payload.ETag,
		Version: version,
	}
	if err := l.store.Write(def.Key, def.Version, env); err != nil {
		l.fail(def.Key, err)
		return nil, err
	}

	if err := l.runOnLoad(def, payload.Data); err != nil {
		l.fail(def.Key, err)
		return nil, err
	}

	l.board.Dismiss(def.Key)
	l.update(def.Key, func(r *Resource) {
		r.Status = StatusLoaded
		r.Data = payload.Data
		r.Date = date
		r.Version = version
		r.Err = nil
	})
	return payload.Data, nil
}

// runOnLoad invokes the definition's OnLoad hook. A nil hook and a true
// return both mean success.
func (l *Loader) runOnLoad(def Definition, data any) error {
	if def.OnLoad == nil {
		return nil
	}
	if !def.OnLoad(data) {
		return failure.New(ErrLoadRejected,
			failure.Message("Dataset was fetched but the load hook rejected it"),
			failure.Context{"key": def.Key},
		)
	}
	return nil
}

func (l *Loader) fail(key string, err error) {
	l.update(key, func(r *Resource) {
		r.Status = StatusError
		r.Err = err
	})
}

// update mutates the per-key record under the state lock and notifies the
// observer with a snapshot.
func (l *Loader) update(key string, fn func(*Resource)) {
	l.mu.Lock()
	r, ok := l.state[key]
	if !ok {
		r = &Resource{Key: key, Status: StatusUnloaded}
		l.state[key] = r
	}
	fn(r)
	snap := *r
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(snap)
	}
}

// keyLock returns the mutex serializing operations on one dataset key.
func (l *Loader) keyLock(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
