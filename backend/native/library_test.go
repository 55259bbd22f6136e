// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin || linux

package native

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
)

func TestOpenMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libmissing.so")
	_, err := Open(path)
	if !errors.Is(err, ErrLibraryNotLoaded) {
		t.Fatalf("Open() error = %v, want ErrLibraryNotLoaded", err)
	}
	if got := upscale.StatusOf(err); got != upscale.StatusLibraryNotLoaded {
		t.Errorf("StatusOf() = %s, want LibraryNotLoaded", got)
	}
}

func TestFactoryUnavailable(t *testing.T) {
	t.Setenv(LibraryEnv, filepath.Join(t.TempDir(), "libmissing.so"))
	if _, err := backend.Get(backend.BackendNative); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("backend.Get(native) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultLibraryName(t *testing.T) {
	if DefaultLibraryName() == "" {
		t.Error("DefaultLibraryName() is empty")
	}
}
