// Package extensions holds the built-in dataset definitions that activity
// programs contribute to the logger: award references (POTA, WWFF) and
// call-sign note files. Each extension owns its in-memory lookup state and
// exposes a refdata.Definition wiring it into the sync pipeline. Program
// business rules (scoring, activation semantics) live in the host app, not
// here.
package extensions

import (
	"context"

	"github.com/marcinplaczek/app-polo/refdata"
	"github.com/marcinplaczek/app-polo/refdata/fetch"
)

// Set bundles the built-in extensions so a host can register them all and
// still reach each lookup table.
type Set struct {
	POTA      *POTADirectory
	WWFF      *WWFFDirectory
	CallNotes *CallNotes
}

// NewSet creates the built-in extensions with their default sources.
func NewSet() *Set {
	return &Set{
		POTA:      NewPOTADirectory(),
		WWFF:      NewWWFFDirectory(),
		CallNotes: NewCallNotes(),
	}
}

// RegisterAll adds every built-in dataset definition to the registry.
func (s *Set) RegisterAll(reg *refdata.Registry) error {
	defs := []refdata.Definition{
		s.POTA.Definition(),
		s.WWFF.Definition(),
		s.CallNotes.Definition(),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// httpFetch builds a FetchFunc that downloads url conditionally and parses
// the body with parse. A 304 answer hands the prior data back untouched.
func httpFetch(url string, parse func([]byte) (any, error)) refdata.FetchFunc {
	return func(ctx context.Context, prior refdata.Prior) (refdata.Payload, error) {
		res, err := fetch.Fetch(ctx, fetch.Request{
			URL:   url,
			ETag:  prior.ETag,
			Parse: parse,
		})
		if err != nil {
			return refdata.Payload{}, err
		}
		if res.NotModified {
			return refdata.Payload{
				Data:        prior.Data,
				ETag:        prior.ETag,
				NotModified: true,
			}, nil
		}
		return refdata.Payload{Data: res.Data, ETag: res.ETag}, nil
	}
}
