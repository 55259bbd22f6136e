package upscale

import (
	"errors"
	"sync"
)

// ContextID is the opaque value handed to native backends and passed back
// with asynchronous error callbacks.
type ContextID uint32

// ErrUnknownContext is returned by DispatchError for an unregistered ID.
var ErrUnknownContext = errors.New("upscale: unknown context id")

var (
	contextsMu sync.RWMutex
	contexts   = make(map[ContextID]*Upscaler)
	nextID     ContextID
)

// registerContext assigns u a fresh ID. IDs start at 1 so that zero never
// names a live instance.
func registerContext(u *Upscaler) ContextID {
	contextsMu.Lock()
	defer contextsMu.Unlock()
	for {
		nextID++
		if nextID == 0 {
			continue
		}
		if _, taken := contexts[nextID]; !taken {
			break
		}
	}
	contexts[nextID] = u
	return nextID
}

func unregisterContext(id ContextID) {
	contextsMu.Lock()
	defer contextsMu.Unlock()
	delete(contexts, id)
}

// LookupContext returns the Upscaler registered under id.
func LookupContext(id ContextID) (*Upscaler, bool) {
	contextsMu.RLock()
	defer contextsMu.RUnlock()
	u, ok := contexts[id]
	return u, ok
}

// DispatchError delivers an asynchronous backend error to the Upscaler
// registered under id. It is safe to call from any thread; the error is
// acted upon at the instance's next BeginFrame.
func DispatchError(id ContextID, status Status, message string) error {
	u, ok := LookupContext(id)
	if !ok {
		return ErrUnknownContext
	}
	u.ReportError(status, message)
	return nil
}
