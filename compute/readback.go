package compute

import (
	"errors"
	"sync"
)

// ErrMapFailed reports that an asynchronous buffer map did not complete.
// It is terminal for that read attempt; the caller may publish and map
// again on a later tick, but must not retry silently.
var ErrMapFailed = errors.New("compute: buffer map failed")

// MapState is the result of polling an in-flight map request.
type MapState uint8

const (
	// MapPending means the mapped data is not visible yet; keep polling.
	MapPending MapState = iota
	// MapReady means Bytes may be read until Unmap is called.
	MapReady
	// MapFailed means this map attempt is dead. See ErrMapFailed.
	MapFailed
)

// Readback is a host-visible staging buffer. The producing side
// publishes a finished snapshot with Publish; the consuming side calls
// RequestMap and then polls until the state is MapReady before touching
// Bytes. Reading without a successful poll is a contract violation, so
// Bytes panics outside the mapped window.
type Readback struct {
	mu        sync.Mutex
	data      []byte
	published bool
	requested bool
	mapped    bool
}

// NewReadback creates an empty readback buffer.
func NewReadback() *Readback {
	return &Readback{}
}

// Publish copies a finished snapshot into the staging buffer, making it
// eligible for mapping. It overwrites any previously published data.
func (r *Readback) Publish(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cap(r.data) < len(data) {
		r.data = make([]byte, len(data))
	}
	r.data = r.data[:len(data)]
	copy(r.data, data)
	r.published = true
}

// RequestMap begins an asynchronous map of the most recent published
// snapshot. The caller must poll until the map resolves.
func (r *Readback) RequestMap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = true
}

// Poll reports the state of the outstanding map request. A request made
// before any snapshot was published resolves to MapFailed.
func (r *Readback) Poll() MapState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.requested {
		return MapPending
	}
	if !r.published {
		r.requested = false
		return MapFailed
	}
	r.mapped = true
	return MapReady
}

// Bytes returns the mapped snapshot. It panics unless the preceding
// Poll returned MapReady, mirroring the host-memory access rules of a
// real mapped buffer. The returned slice is valid until Unmap.
func (r *Readback) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mapped {
		panic("compute: Readback.Bytes called without a successful map")
	}
	return r.data
}

// Unmap releases the mapped window. The buffer stays published and can
// be mapped again.
func (r *Readback) Unmap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapped = false
	r.requested = false
}
