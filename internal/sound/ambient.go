package sound

import "time"

// ambientController owns the persistent crowd bed: at most one session
// at any time. Stop fades the session out and releases its nodes on a
// deferred task; the task captures the session's own voice, so a stale
// teardown can never touch a session started after it.
type ambientController struct {
	e         *Engine
	session   *ambientSession
	intensity float64
	bonus     float64 // anticipation volume bonus from the reaction engine

	// Coarse-grained hysteresis pair for the anticipation murmur,
	// independent of the per-frame tension tone.
	murmurOn   bool
	murmur     *voice
	murmurGain *param
}

// ambientSession is a live bed: rumble + LFO-breathing murmur + sparse
// chatter, summed into one session gain.
type ambientSession struct {
	mode  CrowdMode
	voice *voice
	gain  *param
}

func (c *ambientController) start(mode CrowdMode) {
	if c.session != nil {
		return
	}
	if !c.e.ready() {
		return
	}
	buf := c.e.cache.get(2.0)
	if buf == nil {
		return
	}
	e := c.e

	v := newVoice()

	// Low rumble of many bodies.
	v.add(&branch{
		src:   newNoiseSource(buf, true),
		chain: []processor{newLowpass(150)},
		gain:  newParam(0.5),
	})
	// Mid murmur, breathing on a slow LFO.
	murmurOffset := e.randOffset(buf)
	v.add(&branch{
		src:      &noiseSource{buf: buf, pos: murmurOffset, loop: true},
		chain:    []processor{newBandpass(400, 2)},
		gain:     newParam(0.3),
		lfo:      newOsc(waveSine, ambientLFORate),
		lfoBase:  0.7,
		lfoDepth: 0.3,
	})
	// Sparse higher chatter.
	v.add(&branch{
		src:   &noiseSource{buf: buf, pos: e.randOffset(buf), loop: true},
		chain: []processor{newBandpass(900, 3)},
		gain:  newParam(0.12),
	})

	base := ambientBaseVolume
	if mode == ModeClub {
		base *= ambientClubScale
	}
	v.gain.setNow(0)
	v.gain.rampLinear(0, ambientFadeIn, base)

	c.session = &ambientSession{mode: mode, voice: v, gain: v.gain}
	c.intensity = 0
	c.bonus = 0
	e.mixer.add(v)
}

// stop fades the session out and schedules the node release after the
// ramp has had time to complete. A stop with no session (including one
// issued while a prior stop is still fading) is a no-op.
func (c *ambientController) stop() {
	c.stopMurmurNow()
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	e := c.e
	e.mixer.edit(func() {
		vt := e.mixer.voiceTime(s.voice)
		s.gain.cancelAndRampLinear(vt, vt+ambientFadeOut, 0)
	})
	e.after(ambientReleaseMs*time.Millisecond, func() {
		e.locked(func() {
			// The closure captures this session's own voice; a
			// session started meanwhile lives in a different voice
			// and is untouched.
			e.mixer.kill(s.voice)
		})
	})
}

// killNow tears the session down without a fade (disable/close paths).
func (c *ambientController) killNow() {
	c.stopMurmurNow()
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	c.e.mixer.kill(s.voice)
}

func (c *ambientController) setVolume(v float64) {
	s := c.session
	if s == nil {
		return
	}
	v = clampF(v, 0, 1)
	c.e.mixer.edit(func() {
		s.gain.setTarget(v, ambientGlideTC)
	})
}

// setIntensity maps game intensity onto the session gain and drives the
// coarse anticipation-murmur hysteresis (on above 0.7, off at or below
// 0.5; the band between never transitions). Ignored in club mode.
func (c *ambientController) setIntensity(x float64) {
	s := c.session
	if s == nil || s.mode == ModeClub {
		return
	}
	x = clampF(x, 0, 1)
	c.intensity = x
	c.retarget()
	if x > intensityMurmurOn && !c.murmurOn {
		c.startMurmur()
	} else if x <= intensityMurmurOff && c.murmurOn {
		c.stopMurmur()
	}
}

// setBonus applies the reaction engine's anticipation volume bonus.
func (c *ambientController) setBonus(b float64) {
	s := c.session
	if s == nil || s.mode == ModeClub {
		return
	}
	c.bonus = b
	c.retarget()
}

func (c *ambientController) retarget() {
	s := c.session
	if s == nil {
		return
	}
	target := intensityGainFloor + c.intensity*intensityGainSpan + c.bonus
	c.e.mixer.edit(func() {
		s.gain.setTarget(target, ambientGlideTC)
	})
}

// currentIntensity feeds the tension tone's level.
func (c *ambientController) currentIntensity() float64 {
	return c.intensity
}

func (c *ambientController) startMurmur() {
	if c.murmur != nil {
		return
	}
	buf := c.e.cache.get(2.0)
	if buf == nil {
		return
	}
	v := newVoice()
	g := newParam(0)
	g.rampLinear(0, 0.5, 0.05)
	v.add(&branch{
		src:   &noiseSource{buf: buf, pos: c.e.randOffset(buf), loop: true},
		chain: []processor{newBandpass(500, 2)},
		gain:  g,
	})
	c.murmur = v
	c.murmurGain = g
	c.murmurOn = true
	c.e.mixer.add(v)
}

func (c *ambientController) stopMurmur() {
	v := c.murmur
	if v == nil {
		c.murmurOn = false
		return
	}
	g := c.murmurGain
	c.murmur = nil
	c.murmurGain = nil
	c.murmurOn = false
	e := c.e
	e.mixer.edit(func() {
		vt := e.mixer.voiceTime(v)
		g.cancelAndRampLinear(vt, vt+0.3, 0)
	})
	e.after(400*time.Millisecond, func() {
		e.locked(func() {
			e.mixer.kill(v)
		})
	})
}

func (c *ambientController) stopMurmurNow() {
	if c.murmur != nil {
		c.e.mixer.kill(c.murmur)
	}
	c.murmur = nil
	c.murmurGain = nil
	c.murmurOn = false
}

// StartAmbientCrowd starts the ambient bed for the given crowd-size
// mode. Refused while a session is already running.
func (e *Engine) StartAmbientCrowd(mode CrowdMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.mode = mode
	e.ambient.start(mode)
}

// StopAmbientCrowd fades the bed out and releases it once the fade has
// completed. Idempotent.
func (e *Engine) StopAmbientCrowd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.ambient.stop()
}

// SetAmbientVolume glides the session gain to v, clamped to [0,1].
func (e *Engine) SetAmbientVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.ambient.setVolume(v)
}

// SetGameIntensity feeds the coarse game-state intensity into the
// ambience. Ignored in club mode.
func (e *Engine) SetGameIntensity(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.ambient.setIntensity(x)
}
