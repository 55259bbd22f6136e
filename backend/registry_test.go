// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/upscale"
)

// namedBackend satisfies upscale.Backend for registry tests; only Name is
// called.
type namedBackend struct {
	upscale.Backend
	name string
}

func (b namedBackend) Name() string { return b.name }

func factoryFor(name string) Factory {
	return func() (upscale.Backend, error) {
		return namedBackend{name: name}, nil
	}
}

func unavailable(name string) Factory {
	return func() (upscale.Backend, error) {
		return nil, errors.Join(ErrBackendNotAvailable, errors.New(name+" library missing"))
	}
}

// withRegistry runs fn against a clean registry and restores the previous
// one afterwards.
func withRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	}()
	fn()
}

func TestRegisterAndGet(t *testing.T) {
	withRegistry(t, func() {
		Register("test", factoryFor("test"))
		if !IsRegistered("test") {
			t.Fatal("IsRegistered(test) = false after Register")
		}
		b, err := Get("test")
		if err != nil {
			t.Fatalf("Get(test) error = %v", err)
		}
		if b.Name() != "test" {
			t.Errorf("Name() = %q, want %q", b.Name(), "test")
		}

		Unregister("test")
		if IsRegistered("test") {
			t.Error("IsRegistered(test) = true after Unregister")
		}
		if _, err := Get("test"); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("Get(test) error = %v, want ErrBackendNotAvailable", err)
		}
	})
}

func TestGetNilBackend(t *testing.T) {
	withRegistry(t, func() {
		Register("nil", func() (upscale.Backend, error) { return nil, nil })
		if _, err := Get("nil"); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("Get(nil) error = %v, want ErrBackendNotAvailable", err)
		}
	})
}

func TestAvailableSorted(t *testing.T) {
	withRegistry(t, func() {
		for _, name := range []string{"zeta", BackendSoftware, BackendNative} {
			Register(name, factoryFor(name))
		}
		want := []string{BackendNative, BackendSoftware, "zeta"}
		if got := Available(); !slices.Equal(got, want) {
			t.Errorf("Available() = %v, want %v", got, want)
		}
	})
}

func TestDefaultPriority(t *testing.T) {
	tests := []struct {
		name      string
		factories map[string]Factory
		want      string
	}{
		{
			name: "native wins",
			factories: map[string]Factory{
				BackendSoftware: factoryFor(BackendSoftware),
				BackendNative:   factoryFor(BackendNative),
			},
			want: BackendNative,
		},
		{
			name: "native unavailable",
			factories: map[string]Factory{
				BackendSoftware: factoryFor(BackendSoftware),
				BackendNative:   unavailable(BackendNative),
			},
			want: BackendSoftware,
		},
		{
			name: "unprioritized fallback",
			factories: map[string]Factory{
				BackendNative: unavailable(BackendNative),
				"custom":      factoryFor("custom"),
			},
			want: "custom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRegistry(t, func() {
				for name, f := range tt.factories {
					Register(name, f)
				}
				b, err := Default()
				if err != nil {
					t.Fatalf("Default() error = %v", err)
				}
				if b.Name() != tt.want {
					t.Errorf("Default().Name() = %q, want %q", b.Name(), tt.want)
				}
			})
		})
	}
}

func TestDefaultErrors(t *testing.T) {
	withRegistry(t, func() {
		if _, err := Default(); !errors.Is(err, ErrNoBackends) {
			t.Errorf("Default() on empty registry error = %v, want ErrNoBackends", err)
		}

		Register(BackendNative, unavailable(BackendNative))
		if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("Default() error = %v, want ErrBackendNotAvailable", err)
		}
	})
}

func TestMustDefaultPanics(t *testing.T) {
	withRegistry(t, func() {
		defer func() {
			if recover() == nil {
				t.Error("MustDefault() did not panic on empty registry")
			}
		}()
		MustDefault()
	})
}
