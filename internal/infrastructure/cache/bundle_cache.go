// Package cache provides the single-slot bundle cache the report views
// read through.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"salesboard/internal/domain/records"
)

// DefaultTTL is how long a fetched bundle stays fresh.
const DefaultTTL = 30 * time.Minute

// Clock supplies the current time; injectable for tests.
type Clock func() time.Time

// BundleCache holds the last fetched bundle as zstd-compressed JSON
// together with its store time. One global slot, no size bound, no
// eviction beyond TTL expiry. Callers always store complete bundles;
// there is no partial merge.
type BundleCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	clock    Clock
	payload  []byte
	storedAt time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Option configures a BundleCache.
type Option func(*BundleCache)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *BundleCache) { c.clock = clock }
}

// New creates a bundle cache with the given TTL.
func New(ttl time.Duration, opts ...Option) (*BundleCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	c := &BundleCache{
		ttl:     ttl,
		clock:   time.Now,
		encoder: encoder,
		decoder: decoder,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the stored bundle while it is within the TTL window. A
// stale, empty or undecodable slot is a miss, never an error.
func (c *BundleCache) Get() (*records.Bundle, bool) {
	c.mu.RLock()
	payload, storedAt := c.payload, c.storedAt
	c.mu.RUnlock()

	if payload == nil || c.clock().Sub(storedAt) >= c.ttl {
		return nil, false
	}

	raw, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, false
	}
	var bundle records.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, false
	}
	return &bundle, true
}

// Set stores a complete bundle with the current timestamp, overwriting
// any previous slot.
func (c *BundleCache) Set(bundle *records.Bundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	payload := c.encoder.EncodeAll(raw, nil)

	c.mu.Lock()
	c.payload = payload
	c.storedAt = c.clock()
	c.mu.Unlock()
	return nil
}

// Clear empties the slot.
func (c *BundleCache) Clear() {
	c.mu.Lock()
	c.payload = nil
	c.storedAt = time.Time{}
	c.mu.Unlock()
}
