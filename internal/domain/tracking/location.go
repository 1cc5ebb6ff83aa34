package tracking

import (
	"sync"
	"time"
)

// LocationSample is one GPS reading pushed by a shipper client at ~1 Hz.
type LocationSample struct {
	ShipperID  string    `json:"shipper_id"`
	ShipmentID string    `json:"shipment_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	Speed      float64   `json:"speed"`
	Accuracy   float64   `json:"accuracy"`
	At         time.Time `json:"at"`
}

// RingBufferSize is the number of samples retained per shipper for
// spot-debug traces. Samples are ephemeral; nothing here is durable.
const RingBufferSize = 100

// LocationRing keeps the last N samples per shipper in memory.
type LocationRing struct {
	mu      sync.RWMutex
	samples map[string][]LocationSample
}

// NewLocationRing creates an empty ring store.
func NewLocationRing() *LocationRing {
	return &LocationRing{samples: make(map[string][]LocationSample)}
}

// Push appends a sample, evicting the oldest past RingBufferSize.
func (r *LocationRing) Push(s LocationSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := append(r.samples[s.ShipperID], s)
	if len(buf) > RingBufferSize {
		buf = buf[len(buf)-RingBufferSize:]
	}
	r.samples[s.ShipperID] = buf
}

// Trace returns a copy of the retained samples for a shipper, oldest
// first.
func (r *LocationRing) Trace(shipperID string) []LocationSample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	buf := r.samples[shipperID]
	out := make([]LocationSample, len(buf))
	copy(out, buf)
	return out
}
