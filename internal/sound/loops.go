package sound

import "math"

// Continuous loop controllers. Each holds at most one active loop:
// start is an idempotent no-op while running, stop is idempotent and
// releases every owned node.

// slidingLoop is the low rumble of a stone running on ice. Volume tracks
// stone speed through a short glide rather than jumping.
type slidingLoop struct {
	e     *Engine
	voice *voice
	gain  *param
}

func (l *slidingLoop) start() {
	if l.voice != nil {
		return
	}
	if !l.e.ready() {
		return
	}
	buf := l.e.cache.get(1.0)
	if buf == nil {
		return
	}
	v := newVoice()
	g := newParam(0)
	v.add(&branch{
		src:   newNoiseSource(buf, true),
		chain: []processor{newLowpass(slidingCutoffHz)},
		gain:  g,
	})
	l.voice = v
	l.gain = g
	l.e.mixer.add(v)
}

func (l *slidingLoop) updateVolume(speed float64) {
	if l.voice == nil {
		return
	}
	target := minF(slidingVolCap, math.Abs(speed)*slidingVolScale)
	l.e.mixer.edit(func() {
		l.gain.setTarget(target, slidingGlideTC)
	})
}

func (l *slidingLoop) stop() {
	if l.voice == nil {
		return
	}
	l.e.mixer.kill(l.voice)
	l.voice = nil
	l.gain = nil
}

// sweepingLoop is the brush swish. For efficiency the swish texture is a
// short enveloped-noise buffer precomputed once and looped with no
// runtime filter node; it survives restarts of the loop.
type sweepingLoop struct {
	e     *Engine
	voice *voice
	buf   *NoiseBuffer
}

func (l *sweepingLoop) start() {
	if l.voice != nil {
		return
	}
	// A closed device is reinitialized transparently here: sweeping is
	// the first sound after an end-of-game teardown.
	if !l.e.ready() {
		return
	}
	if l.buf == nil {
		l.buf = l.swishBuffer()
	}
	if l.buf == nil {
		return
	}
	v := newVoice()
	v.add(&branch{
		src:  newNoiseSource(l.buf, true),
		gain: newParam(sweepingLoopGain),
	})
	l.voice = v
	l.e.mixer.add(v)
}

func (l *sweepingLoop) stop() {
	if l.voice == nil {
		return
	}
	l.e.mixer.kill(l.voice)
	l.voice = nil
}

// StartSliding starts the stone-rumble loop. A second call while running
// is a no-op.
func (e *Engine) StartSliding() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sliding.start()
}

// UpdateSlidingVolume retargets the rumble level from stone speed.
func (e *Engine) UpdateSlidingVolume(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sliding.updateVolume(speed)
}

// StopSliding stops and releases the rumble loop. Idempotent.
func (e *Engine) StopSliding() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sliding.stop()
}

// StartSweeping starts the brush loop. A second call while running is a
// no-op.
func (e *Engine) StartSweeping() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sweeping.start()
}

// StopSweeping stops and releases the brush loop. Idempotent.
func (e *Engine) StopSweeping() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sweeping.stop()
}

// swishBuffer bakes one brush stroke: band-limited noise with a
// back-and-forth amplitude envelope across the loop.
func (l *sweepingLoop) swishBuffer() *NoiseBuffer {
	n := int(sweepingBufSecs * SampleRate)
	if n <= 0 {
		return nil
	}
	data := make([]float64, n)
	lp := 0.0
	hp := 0.0
	for i := range data {
		raw := l.e.rand.Bipolar()
		// Two one-poles give the airy band of a moving brush head.
		lp += 0.35 * (raw - lp)
		hp += 0.02 * (lp - hp)
		p := float64(i) / float64(n)
		env := math.Sin(p * math.Pi)
		data[i] = (lp - hp) * env * env
	}
	return &NoiseBuffer{duration: sweepingBufSecs, data: data}
}
