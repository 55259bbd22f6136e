// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"unsafe"

	"github.com/gogpu/upscale"
)

// maxMessageLen bounds the C string read from the error callback.
const maxMessageLen = 4096

// onError is the Go side of the library error callback.
func onError(ctx, status, msg uintptr) uintptr {
	message := goString(msg)
	if err := upscale.DispatchError(upscale.ContextID(ctx), upscale.Status(status), message); err != nil {
		upscale.Logger().Warn("native: dropped error callback",
			"context", ctx, "status", upscale.Status(status), "message", message, "error", err)
	}
	return 0
}

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := unsafe.Pointer(p)
	n := 0
	for n < maxMessageLen && *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}
