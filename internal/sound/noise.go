package sound

import "sync"

// NoiseBuffer is a precomputed run of independent uniform samples in
// [-1,1]. Buffers are immutable once generated, so concurrent readers
// need no coordination.
type NoiseBuffer struct {
	duration float64
	data     []float64
}

// noiseCache memoizes a single noise buffer keyed by duration. A request
// is served from cache whenever the cached buffer is at least as long as
// asked for; only a longer request regenerates. Every noise-based effect
// draws from here.
type noiseCache struct {
	mu   sync.Mutex
	rand *Rand
	buf  *NoiseBuffer
}

func newNoiseCache(r *Rand) *noiseCache {
	return &noiseCache{rand: r}
}

// get returns a buffer covering at least duration seconds, or nil for a
// non-positive duration. Callers treat nil as "skip this effect".
func (c *noiseCache) get(duration float64) *NoiseBuffer {
	n := int(duration * SampleRate)
	if n <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf != nil && c.buf.duration >= duration {
		return c.buf
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = c.rand.Bipolar()
	}
	c.buf = &NoiseBuffer{duration: duration, data: data}
	return c.buf
}
