package sound

import (
	"math"
	"testing"
	"time"
)

func TestAmbientSingleSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	e.StartAmbientCrowd(ModeArena)
	e.StartAmbientCrowd(ModeClub)
	if got := e.mixer.activeVoices(); got != 1 {
		t.Fatalf("activeVoices = %d, want 1 session", got)
	}
}

func TestAmbientFadeInTarget(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	s := e.ambient.session
	if s == nil {
		t.Fatal("no session")
	}
	if len(s.gain.spans) != 1 {
		t.Fatalf("session gain has %d spans, want 1 fade-in ramp", len(s.gain.spans))
	}
	ramp := s.gain.spans[0]
	if math.Abs(ramp.t1-ambientFadeIn) > 1e-9 || math.Abs(ramp.v1-ambientBaseVolume) > 1e-9 {
		t.Fatalf("fade-in ends at (%v,%v), want (%v,%v)", ramp.t1, ramp.v1, ambientFadeIn, ambientBaseVolume)
	}
}

func TestAmbientClubModeIsQuieter(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeClub)
	s := e.ambient.session
	want := ambientBaseVolume * ambientClubScale
	if got := s.gain.spans[0].v1; math.Abs(got-want) > 1e-9 {
		t.Fatalf("club fade-in target = %v, want %v", got, want)
	}
}

func TestAmbientStopFadesThenReleases(t *testing.T) {
	e, hb, env := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	v := e.ambient.session.voice
	e.StopAmbientCrowd()
	if e.ambient.session != nil {
		t.Fatal("session still registered after stop")
	}
	if v.killed {
		t.Fatal("voice killed immediately; should fade first")
	}
	env.advance(time.Duration(ambientReleaseMs+100) * time.Millisecond)
	if !v.killed {
		t.Fatal("voice not released after the fade window")
	}
	hb.advance(64)
	if got := e.mixer.activeVoices(); got != 0 {
		t.Fatalf("activeVoices = %d after release, want 0", got)
	}
	// Second stop with nothing running is a no-op.
	e.StopAmbientCrowd()
}

func TestAmbientStopDuringFadeInFallsToSilence(t *testing.T) {
	e, hb, env := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	g := e.ambient.session.gain
	v := e.ambient.session.voice

	// Stop early in the 1.5s fade-in: the gain must fall from the level
	// it has actually reached, not keep rising to the fade-in target.
	hb.advance(SampleRate / 10)
	level := g.value
	if level <= 0 {
		t.Fatal("session gain did not rise during fade-in")
	}
	e.StopAmbientCrowd()

	prev := g.value
	for i := 0; i < 50; i++ { // 0.5s in 10ms blocks
		hb.advance(SampleRate / 100)
		if g.value > prev+1e-9 {
			t.Fatalf("session gain rose from %v to %v after stop", prev, g.value)
		}
		prev = g.value
	}
	if g.value > 1e-6 {
		t.Fatalf("session gain = %v at the end of its fade-out, want ~0", g.value)
	}
	// The release task fires after the fade has already reached silence.
	env.advance(time.Duration(ambientReleaseMs) * time.Millisecond)
	if !v.killed {
		t.Fatal("voice not released after the fade")
	}
}

func TestAmbientStaleTeardownSparesNewSession(t *testing.T) {
	e, hb, env := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	e.StopAmbientCrowd()
	e.StartAmbientCrowd(ModeArena)
	second := e.ambient.session.voice

	// The first session's deferred release fires while the second runs.
	env.advance(time.Duration(ambientReleaseMs+100) * time.Millisecond)
	hb.advance(64)
	if second.killed {
		t.Fatal("stale teardown killed the new session")
	}
	if got := e.mixer.activeVoices(); got != 1 {
		t.Fatalf("activeVoices = %d, want 1 (new session only)", got)
	}
}

func TestAmbientVolumeGlidesClamped(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	g := e.ambient.session.gain
	e.SetAmbientVolume(0.4)
	if !g.glide || g.target != 0.4 {
		t.Fatalf("target = %v (glide=%v), want 0.4", g.target, g.glide)
	}
	e.SetAmbientVolume(1.7)
	if g.target != 1.0 {
		t.Fatalf("target = %v, want clamped 1.0", g.target)
	}
	e.SetAmbientVolume(-0.2)
	if g.target != 0 {
		t.Fatalf("target = %v, want clamped 0", g.target)
	}
}

func TestIntensityRetargetsSessionGain(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	g := e.ambient.session.gain
	e.SetGameIntensity(0.5)
	want := intensityGainFloor + 0.5*intensityGainSpan
	if !g.glide || math.Abs(g.target-want) > 1e-9 {
		t.Fatalf("target = %v, want %v", g.target, want)
	}
	e.SetGameIntensity(2.0) // clamps to 1
	if math.Abs(g.target-(intensityGainFloor+intensityGainSpan)) > 1e-9 {
		t.Fatalf("target = %v, want clamped max", g.target)
	}
}

func TestIntensityIgnoredInClubMode(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeClub)
	g := e.ambient.session.gain
	e.SetGameIntensity(0.9)
	if g.glide {
		t.Fatal("club session gain retargeted by intensity")
	}
	if got := e.mixer.activeVoices(); got != 1 {
		t.Fatalf("club intensity spawned voices: %d", got)
	}
}

func TestIntensityMurmurHysteresis(t *testing.T) {
	e, hb, env := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)

	e.SetGameIntensity(0.6) // inside the dead band from below: no murmur
	if e.ambient.murmurOn {
		t.Fatal("murmur started inside the dead band")
	}
	e.SetGameIntensity(0.8)
	if !e.ambient.murmurOn || e.mixer.activeVoices() != 2 {
		t.Fatal("murmur not started above the on threshold")
	}
	murmur := e.ambient.murmur

	e.SetGameIntensity(0.6) // dead band from above: murmur persists
	if !e.ambient.murmurOn {
		t.Fatal("murmur stopped inside the dead band")
	}
	e.SetGameIntensity(0.5) // at the off threshold: stops
	if e.ambient.murmurOn {
		t.Fatal("murmur still on at the off threshold")
	}
	env.advance(500 * time.Millisecond)
	if !murmur.killed {
		t.Fatal("murmur voice not released after its fade")
	}
	hb.advance(64)
	if got := e.mixer.activeVoices(); got != 1 {
		t.Fatalf("activeVoices = %d after murmur release, want 1", got)
	}

	// Re-crossing the on threshold starts a fresh murmur layer.
	e.SetGameIntensity(0.75)
	if !e.ambient.murmurOn || e.ambient.murmur == murmur {
		t.Fatal("murmur did not restart after re-crossing the threshold")
	}
}

func TestAmbientSessionHasThreeLayers(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	v := e.ambient.session.voice
	if got := len(v.branches); got != 3 {
		t.Fatalf("session has %d layers, want 3", got)
	}
	// The breathing murmur layer carries the slow LFO.
	if v.branches[1].lfo == nil {
		t.Error("murmur layer missing its LFO")
	}
}

func TestDisableTearsDownAmbientImmediately(t *testing.T) {
	e, hb, _ := newTestEngine(t)
	e.StartAmbientCrowd(ModeArena)
	e.SetGameIntensity(0.9) // murmur running too
	v := e.ambient.session.voice
	e.SetEnabled(false)
	if e.ambient.session != nil || !v.killed {
		t.Fatal("disable must kill the session without a fade")
	}
	hb.resume()
	hb.advance(64)
	if got := e.mixer.activeVoices(); got != 0 {
		t.Fatalf("activeVoices = %d after disable, want 0", got)
	}
}
