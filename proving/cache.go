package proving

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a verification result is reused.
	DefaultCacheTTL = 30 * time.Minute
	// DefaultSweepInterval is how often Run drops expired entries.
	DefaultSweepInterval = 10 * time.Minute
)

type cacheEntry struct {
	value    bool
	expireAt time.Time
}

// CachingVerifier memoizes the results of another Verifier. Only definite
// results are cached; errors always reach the caller uncached.
type CachingVerifier struct {
	next  Verifier
	ttl   time.Duration
	now   func() time.Time
	cache sync.Map // map[[32]byte]cacheEntry
}

// NewCachingVerifier wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachingVerifier(next Verifier, ttl time.Duration) *CachingVerifier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingVerifier{next: next, ttl: ttl, now: time.Now}
}

func cacheKey(proof, instance []byte, vk VerifyingKey) [32]byte {
	h := sha256.New()
	var n [8]byte
	for _, part := range [][]byte{vk.Bytes(), proof, instance} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(part)
	}
	var k [32]byte
	copy(k[:], h.Sum(nil))
	return k
}

func (c *CachingVerifier) Verify(proof, instance []byte, vk VerifyingKey) (bool, error) {
	key := cacheKey(proof, instance, vk)
	if val, ok := c.cache.Load(key); ok {
		entry := val.(cacheEntry)
		if c.now().Before(entry.expireAt) {
			return entry.value, nil
		}
		c.cache.Delete(key)
	}

	ok, err := c.next.Verify(proof, instance, vk)
	if err != nil {
		return false, err
	}
	c.cache.Store(key, cacheEntry{value: ok, expireAt: c.now().Add(c.ttl)})
	return ok, nil
}

// Sweep drops expired entries and returns how many it removed.
func (c *CachingVerifier) Sweep() int {
	now := c.now()
	removed := 0
	c.cache.Range(func(key, value any) bool {
		if now.After(value.(cacheEntry).expireAt) {
			c.cache.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps every interval until ctx is done.
func (c *CachingVerifier) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep()
		}
	}
}
