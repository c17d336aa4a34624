package sound

// Crowd one-shots. Same builder contract as effects.go, but this group
// is additionally silent in club (practice) mode — a practice sheet has
// no crowd to react.

// PlayCrowdGasp is the short collective intake of breath: a highpassed
// noise burst swept 2000→1200 Hz.
func (e *Engine) PlayCrowdGasp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gasp()
}

func (e *Engine) gasp() {
	if !e.crowdReady() {
		return
	}
	buf := e.cache.get(0.5)
	if buf == nil {
		return
	}
	const dur = 0.35
	v := newVoice()
	bp := newBandpass(2000, 2)
	bp.freq.rampExp(0, dur, 1200)
	g := newParam(0)
	g.rampLinear(0, 0.05, 0.3)
	g.rampExp(0, dur, expFloor)
	v.add(&branch{
		src:   newNoiseBurst(buf, e.randOffset(buf), dur),
		chain: []processor{newHighpass(600), bp},
		gain:  g,
	})
	v.stopAt = dur
	e.mixer.add(v)
}

// PlayCrowdMurmur is the uneasy build-sustain-decay rustle.
func (e *Engine) PlayCrowdMurmur() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.murmur()
}

func (e *Engine) murmur() {
	if !e.crowdReady() {
		return
	}
	buf := e.cache.get(1.5)
	if buf == nil {
		return
	}
	const dur = 1.2
	v := newVoice()
	g := newParam(0)
	g.rampLinear(0, 0.3, 0.2)
	g.rampLinear(0, 0.8, 0.2)
	g.rampExp(0, dur, expFloor)
	v.add(&branch{
		src:   newNoiseBurst(buf, e.randOffset(buf), dur),
		chain: []processor{newBandpass(350, 2)},
		gain:  g,
	})
	v.stopAt = dur
	e.mixer.add(v)
}

// PlayCrowdCheer swells with the moment: duration and volume grow with
// intensity, the bandpass center sweeps up and back down, and a big
// cheer (intensity > 0.5) gains three detuned sawtooth voices.
// Non-positive intensity falls back to 0.5.
func (e *Engine) PlayCrowdCheer(intensity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crowdReady() {
		return
	}
	if intensity <= 0 {
		intensity = 0.5
	}
	intensity = clampF(intensity, 0, 1)
	buf := e.cache.get(2.0)
	if buf == nil {
		return
	}

	dur := 0.8 + 1.2*intensity
	peakGain := 0.15 + 0.25*intensity

	v := newVoice()
	bp := newBandpass(400, 1.5)
	bp.freq.rampExp(0, 0.4*dur, 800+intensity*600)
	bp.freq.rampExp(0, dur, 500)
	g := newParam(0)
	g.rampLinear(0, 0.15*dur, peakGain)
	g.rampLinear(0, 0.6*dur, peakGain)
	g.rampExp(0, dur, expFloor)
	v.add(&branch{
		src:   newNoiseBurst(buf, e.randOffset(buf), dur),
		chain: []processor{bp},
		gain:  g,
	})

	if intensity > 0.5 {
		// Voice harmonics: detuned saws shouting through the roar.
		for _, base := range [3]float64{196, 262, 330} {
			detune := 1 + e.rand.RangeF(-0.02, 0.02)
			o := newOsc(waveSawtooth, base*detune)
			hg := newParam(0)
			hg.rampLinear(0, 0.2*dur, 0.035)
			hg.rampLinear(0, 0.55*dur, 0.035)
			hg.rampExp(0, dur, expFloor)
			v.add(&branch{src: o, chain: []processor{newLowpass(1800)}, gain: hg})
		}
	}

	v.stopAt = dur
	e.mixer.add(v)
}

// PlayCrowdOoh is the rising-then-falling appreciative "ooh": a detuned
// sine choir over a breathy noise layer.
func (e *Engine) PlayCrowdOoh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crowdReady() {
		return
	}
	e.choirVoice(300, 380, 250, 0.8)
}

// PlayCrowdGroan is the monotonic falling disappointment contour.
func (e *Engine) PlayCrowdGroan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crowdReady() {
		return
	}
	e.choirVoice(250, 250, 150, 1.0)
}

// choirVoice builds three slightly detuned sines following a
// start→peak→end pitch contour, plus breath noise. A flat peak equal to
// the start gives the monotonic fall.
func (e *Engine) choirVoice(fromHz, peakHz, toHz, dur float64) {
	v := newVoice()
	for _, detune := range [3]float64{-0.012, 0, 0.011} {
		d := 1 + detune + e.rand.RangeF(-0.004, 0.004)
		o := newOsc(waveSine, fromHz*d)
		if peakHz > fromHz {
			o.freq.rampLinear(0, 0.4*dur, peakHz*d)
		}
		o.freq.rampLinear(0, dur, toHz*d)
		g := newParam(0)
		g.rampLinear(0, 0.15*dur, 0.09)
		g.rampLinear(0, 0.6*dur, 0.09)
		g.rampExp(0, dur, expFloor)
		v.add(&branch{src: o, gain: g})
	}
	if buf := e.cache.get(1.5); buf != nil {
		bg := newParam(0)
		bg.rampLinear(0, 0.2*dur, 0.05)
		bg.rampExp(0, dur, expFloor)
		v.add(&branch{
			src:   newNoiseBurst(buf, e.randOffset(buf), dur),
			chain: []processor{newBandpass(900, 1.2)},
			gain:  bg,
		})
	}
	v.stopAt = dur
	e.mixer.add(v)
}

// PlayCrowdApplause schedules individual synthetic claps across the
// requested duration: each clap is a ~40ms noise micro-burst through a
// randomized bandpass, jittered around an even grid, with per-clap
// volume following a ramp-up / hold / ramp-down shape over the whole
// run. Non-positive duration falls back to 1.5s.
func (e *Engine) PlayCrowdApplause(duration float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crowdReady() {
		return
	}
	if duration <= 0 {
		duration = 1.5
	}
	claps := int(duration * 15)
	if claps < 1 {
		claps = 1
	}
	buf := e.cache.get(0.5)
	if buf == nil {
		return
	}

	const clapDur = 0.04
	interval := duration / float64(claps)
	v := newVoice()
	for i := 0; i < claps; i++ {
		at := float64(i)*interval + e.rand.RangeF(-0.05, 0.05)
		if at < 0 {
			at = 0
		}
		g := newParam(0.25 * applauseShape(at/duration))
		g.rampExp(0, clapDur, expFloor)
		v.add(&branch{
			at:    at,
			src:   newNoiseBurst(buf, e.randOffset(buf), clapDur),
			chain: []processor{newBandpass(e.rand.RangeF(1200, 1800), 1.5)},
			gain:  g,
		})
	}
	v.stopAt = duration + clapDur + 0.05
	e.mixer.add(v)
}

// applauseShape is the global applause envelope: up over the first 15%,
// hold, down over the final 30%.
func applauseShape(progress float64) float64 {
	switch {
	case progress < 0.15:
		return progress / 0.15
	case progress > 0.7:
		return clampF((1-progress)/0.3, 0, 1)
	default:
		return 1
	}
}

// PlayQuickCheer is the cheap burst for frequent triggering.
func (e *Engine) PlayQuickCheer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.crowdReady() {
		return
	}
	buf := e.cache.get(0.5)
	if buf == nil {
		return
	}
	const dur = 0.4
	v := newVoice()
	g := newParam(0)
	g.rampLinear(0, 0.05, 0.2)
	g.rampExp(0, dur, expFloor)
	v.add(&branch{
		src:   newNoiseBurst(buf, e.randOffset(buf), dur),
		chain: []processor{newBandpass(600, 1.5)},
		gain:  g,
	})
	v.stopAt = dur
	e.mixer.add(v)
}
