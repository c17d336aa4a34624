package sound

import (
	"testing"
	"time"
)

// testEnv provides a manual clock and deferred-task queue so every
// timing behavior is exercised without sleeping.
type testEnv struct {
	clock time.Time
	tasks []*testTask
}

type testTask struct {
	at    time.Time
	fn    func()
	fired bool
}

func newTestEnv() *testEnv {
	return &testEnv{clock: time.Unix(1000, 0)}
}

func (env *testEnv) now() time.Time { return env.clock }

func (env *testEnv) after(d time.Duration, fn func()) {
	env.tasks = append(env.tasks, &testTask{at: env.clock.Add(d), fn: fn})
}

// advance moves the clock forward, firing due tasks in order.
func (env *testEnv) advance(d time.Duration) {
	target := env.clock.Add(d)
	for {
		var next *testTask
		for _, task := range env.tasks {
			if task.fired || task.at.After(target) {
				continue
			}
			if next == nil || task.at.Before(next.at) {
				next = task
			}
		}
		if next == nil {
			break
		}
		env.clock = next.at
		next.fired = true
		next.fn()
	}
	env.clock = target
}

func newTestEngine(t *testing.T) (*Engine, *headlessBackend, *testEnv) {
	t.Helper()
	env := newTestEnv()
	hb := newHeadlessBackend()
	e := NewEngine(
		WithSeed(12345),
		WithBackend(hb),
		WithClock(env.now),
		WithTimer(env.after),
	)
	e.SetEnabled(true)
	return e, hb, env
}

func TestDisabledEngineIsSilentNoOp(t *testing.T) {
	env := newTestEnv()
	e := NewEngine(WithSeed(1), WithBackend(newHeadlessBackend()), WithClock(env.now), WithTimer(env.after))
	// Never enabled: every command must be a quiet no-op.
	e.PlayThrow()
	e.PlayCollision(0.8)
	e.PlayScore(3)
	e.StartSliding()
	e.StartSweeping()
	e.StartAmbientCrowd(ModeArena)
	e.PlayCrowdCheer(0.9)
	e.UpdateLiveCrowdReaction(StoneKinematics{Speed: 3, HeadingToTarget: true})
	if got := e.mixer.activeVoices(); got != 0 {
		t.Fatalf("disabled engine allocated %d voices", got)
	}
}

func TestAbsentDeviceIsSilentNoOp(t *testing.T) {
	env := newTestEnv()
	e := NewEngine(WithSeed(1), WithClock(env.now), WithTimer(env.after))
	e.host.newBackend = nil // simulate no audio hardware
	e.SetEnabled(true)
	e.PlayThrow()
	e.StartAmbientCrowd(ModeArena)
	if got := e.mixer.activeVoices(); got != 0 {
		t.Fatalf("engine without device allocated %d voices", got)
	}
}

func TestEventBusWiring(t *testing.T) {
	e, _, _ := newTestEngine(t)
	bus := NewEventBus()
	e.AttachEvents(bus)

	bus.Emit(Event{Type: EventThrowStarted})
	bus.Emit(Event{Type: EventStoneCollision, Value: 0.7})
	bus.Emit(Event{Type: EventScoreAwarded, Value: 2})
	if got := e.mixer.activeVoices(); got != 3 {
		t.Fatalf("expected 3 voices from bus events, got %d", got)
	}
}

func TestSeededSynthesisIsReproducible(t *testing.T) {
	a := NewEngine(WithSeed(7), WithBackend(newHeadlessBackend()))
	b := NewEngine(WithSeed(7), WithBackend(newHeadlessBackend()))
	ba := a.cache.get(1.0)
	bb := b.cache.get(1.0)
	if len(ba.data) != len(bb.data) {
		t.Fatalf("buffer lengths differ: %d vs %d", len(ba.data), len(bb.data))
	}
	for i := range ba.data {
		if ba.data[i] != bb.data[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, ba.data[i], bb.data[i])
		}
	}
}

func TestRenderedOneShotIsAudible(t *testing.T) {
	e, hb, _ := newTestEngine(t)
	e.PlayCollision(0.8)
	samples := hb.advance(SampleRate / 10)
	if samples == nil {
		t.Fatal("no samples rendered")
	}
	audible := false
	for _, s := range samples {
		if s > 1e-6 || s < -1e-6 {
			audible = true
			break
		}
	}
	if !audible {
		t.Fatal("collision rendered as silence")
	}
}

func TestCloseStopsEverything(t *testing.T) {
	e, hb, _ := newTestEngine(t)
	e.StartSliding()
	e.StartAmbientCrowd(ModeArena)
	e.Close()
	if hb.state() != deviceClosed {
		t.Fatalf("device state after Close = %v", hb.state())
	}
	// Commands after Close are no-ops.
	e.PlayThrow()
	e.StartSweeping()
	for _, v := range e.mixer.voices {
		if !v.killed {
			t.Fatal("voice left alive after Close")
		}
	}
}
