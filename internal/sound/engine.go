package sound

import (
	"log"
	"sync"
	"time"
)

// Engine is the procedural broadcast-audio engine: one explicit instance
// owning the output device, the synthesis graph, and the crowd state.
// Every public method is fire-and-forget and silently does nothing when
// sound is disabled or no device is available — best-effort sound, never
// a crash.
type Engine struct {
	mu    sync.Mutex
	mixer *mixer
	host  *deviceHost
	cache *noiseCache
	rand  *Rand
	mode  CrowdMode

	sliding  *slidingLoop
	sweeping *sweepingLoop
	ambient  *ambientController
	reaction *reactionEngine

	now    func() time.Time
	after  func(d time.Duration, fn func())
	logf   func(format string, args ...any)
	closed bool
}

type Option func(*Engine)

// WithSeed makes all synthesis randomness (noise buffers, detune,
// applause jitter) reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rand = NewRand(seed) }
}

// WithBackend substitutes the output device, e.g. a headless backend.
func WithBackend(b outputBackend) Option {
	return func(e *Engine) {
		e.host.newBackend = func() (outputBackend, error) { return b, nil }
	}
}

// WithClock substitutes the wall clock driving cooldowns and the
// anticipation rate limit.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimer substitutes the deferred-task scheduler used for fades and
// delayed teardown.
func WithTimer(after func(d time.Duration, fn func())) Option {
	return func(e *Engine) { e.after = after }
}

// WithLogging routes internal device diagnostics to the standard logger.
func WithLogging() Option {
	return func(e *Engine) { e.logf = log.Printf }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		mixer: newMixer(),
		rand:  NewRand(uint64(time.Now().UnixNano())),
		now:   time.Now,
		after: defaultAfter,
		logf:  func(string, ...any) {},
	}
	e.host = newDeviceHost(e.mixer, func() (outputBackend, error) { return newOtoBackend() })
	for _, opt := range opts {
		opt(e)
	}
	e.host.logf = e.logf
	e.host.after = e.after
	e.cache = newNoiseCache(e.rand)
	e.sliding = &slidingLoop{e: e}
	e.sweeping = &sweepingLoop{e: e}
	e.ambient = &ambientController{e: e}
	e.reaction = &reactionEngine{e: e}
	return e
}

func defaultAfter(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// locked runs fn under the engine lock; deferred-task callbacks use it so
// a task firing after Close is a no-op.
func (e *Engine) locked(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	fn()
}

// ready reports whether playback can proceed. Callers hold the lock.
func (e *Engine) ready() bool {
	return !e.closed && e.host.ready()
}

// crowdReady additionally suppresses crowd material in the club
// (practice) environment.
func (e *Engine) crowdReady() bool {
	return e.ready() && e.mode != ModeClub
}

// SetEnabled turns the engine on or off. Enabling lazily creates the
// device; disabling stops every owned loop and session and leaves the
// device idle.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if !enabled {
		e.sliding.stop()
		e.sweeping.stop()
		e.ambient.killNow()
		e.reaction.reset()
	}
	e.host.setEnabled(enabled)
}

// SetFastForward ducks the master gain to a fixed low level while the
// simulation skips ahead, or restores the user volume.
func (e *Engine) SetFastForward(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.host.setFastForward(active)
}

// RestoreVolume cancels all pending master-gain automation and forces the
// default level, clearing any fast-forward duck. Recovery hook after
// suspected audio-state corruption.
func (e *Engine) RestoreVolume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.host.restoreVolume()
}

// SetMasterVolume applies the persisted user volume preference, clamped
// to [0,1].
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.host.setUserVolume(v)
}

// OnDeviceInterrupted is the hint hook for platform interruption or
// visibility-change events; the host schedules a passive resume attempt.
func (e *Engine) OnDeviceInterrupted() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.host.onInterruption(e.locked)
}

// Close stops everything and closes the device. The engine behaves as
// disabled afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.sliding.stop()
	e.sweeping.stop()
	e.ambient.killNow()
	e.reaction.reset()
	e.host.closeDevice()
	e.closed = true
}
