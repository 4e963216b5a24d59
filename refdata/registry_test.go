package refdata

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"
)

func noopFetch(ctx context.Context, prior Prior) (Payload, error) {
	return Payload{Data: "ok"}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Definition{Key: "pota-all-parks", Fetch: noopFetch}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	def, err := reg.Get("pota-all-parks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if def.Key != "pota-all-parks" {
		t.Errorf("Get() key = %v, want pota-all-parks", def.Key)
	}
}

func TestRegistryGetUnknownKey(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("nope")
	if err == nil {
		t.Fatal("Get() error = nil, want failure")
	}
	if code := failure.CodeOf(err); code != ErrDefinitionNotFound {
		t.Errorf("Get() error code = %v, want %v", code, ErrDefinitionNotFound)
	}
}

func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{
			name: "missing key",
			def:  Definition{Fetch: noopFetch},
		},
		{
			name: "missing fetch",
			def:  Definition{Key: "parks"},
		},
		{
			name: "negative max age",
			def:  Definition{Key: "parks", Fetch: noopFetch, MaxAgeDays: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.def)
			if err == nil {
				t.Fatal("Register() error = nil, want failure")
			}
			if code := failure.CodeOf(err); code != ErrInvalidDefinition {
				t.Errorf("Register() error code = %v, want %v", code, ErrInvalidDefinition)
			}
		})
	}
}

func TestRegistryReplaceByKey(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Definition{Key: "parks", Name: "old", Fetch: noopFetch}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(Definition{Key: "parks", Name: "new", Fetch: noopFetch}); err != nil {
		t.Fatal(err)
	}

	def, err := reg.Get("parks")
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "new" {
		t.Errorf("Get() name = %v, want new", def.Name)
	}
	if got := len(reg.List()); got != 1 {
		t.Errorf("List() length = %d, want 1", got)
	}
}

func TestRegistryListOrder(t *testing.T) {
	reg := NewRegistry()
	for _, key := range []string{"wwff-directory", "call-notes", "pota-all-parks"} {
		if err := reg.Register(Definition{Key: key, Fetch: noopFetch}); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"call-notes", "pota-all-parks", "wwff-directory"}
	if diff := cmp.Diff(want, reg.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Key: "parks", Fetch: noopFetch}); err != nil {
		t.Fatal(err)
	}

	reg.Unregister("parks")
	if _, err := reg.Get("parks"); err == nil {
		t.Error("Get() after Unregister() succeeded, want failure")
	}

	// Unregistering an unknown key is a no-op
	reg.Unregister("parks")
}
