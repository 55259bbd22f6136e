// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin || linux

package native

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
)

// LibraryEnv names the environment variable that overrides the library path.
const LibraryEnv = "UPSCALE_NATIVE_LIBRARY"

// DefaultLibraryName returns the platform file name of the vendor library.
func DefaultLibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libupscale.dylib"
	}
	return "libupscale.so"
}

// Library is an opened vendor library.
type Library struct {
	path   string
	handle uintptr
}

// Path returns the path the library was opened from.
func (l *Library) Path() string { return l.path }

// Close unloads the library. Backends created from it must not be used
// afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}

// purego callbacks are never freed, so one is shared by every Backend.
var (
	callbackOnce sync.Once
	callbackPtr  uintptr
)

func errorCallback() uintptr {
	callbackOnce.Do(func() {
		callbackPtr = purego.NewCallback(onError)
	})
	return callbackPtr
}

// bind resolves one export into fptr.
func bind(handle uintptr, fptr any, name string) error {
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrMissingSymbol, name, err)
	}
	purego.RegisterFunc(fptr, sym)
	return nil
}

// Open loads the library at path and binds its exports.
func Open(path string) (*Backend, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLibraryNotLoaded, path, err)
	}
	lib := &Library{path: path, handle: handle}

	a := &api{}
	symbols := []struct {
		fptr any
		name string
	}{
		{&a.isSupported, "upscale_is_supported"},
		{&a.status, "upscale_status"},
		{&a.setTechnique, "upscale_set_technique"},
		{&a.setFramebuffer, "upscale_set_framebuffer"},
		{&a.recommended, "upscale_recommended_resolution"},
		{&a.minResolution, "upscale_min_resolution"},
		{&a.maxResolution, "upscale_max_resolution"},
		{&a.setSharpness, "upscale_set_sharpness"},
		{&a.setInputResolution, "upscale_set_input_resolution"},
		{&a.setJitter, "upscale_set_jitter"},
		{&a.resetHistory, "upscale_reset_history"},
		{&a.registerBuffer, "upscale_register_buffer"},
		{&a.prepare, "upscale_prepare"},
		{&a.upscale, "upscale_upscale"},
		{&a.setErrorCallback, "upscale_set_error_callback"},
	}
	var errs []error
	for _, s := range symbols {
		if err := bind(handle, s.fptr, s.name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		_ = lib.Close()
		return nil, fmt.Errorf("native: %s: %w", path, errors.Join(errs...))
	}

	upscale.Logger().Info("native: library loaded", "path", path)
	return newBackend(a, lib, errorCallback()), nil
}

// libraryPath returns the override from LibraryEnv or DefaultLibraryName.
func libraryPath() string {
	if p := os.Getenv(LibraryEnv); p != "" {
		return p
	}
	return DefaultLibraryName()
}

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() (upscale.Backend, error) {
		b, err := Open(libraryPath())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, err)
		}
		return b, nil
	})
}
