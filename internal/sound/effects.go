package sound

// Game one-shots. Each builder constructs a fresh short-lived graph,
// schedules its envelopes, and hands the voice to the mixer; no two calls
// share nodes. These play in both arena and club modes.

// scoreChord is the major-triad-plus-octave set used for score notes
// (C5 E5 G5 C6).
var scoreChord = [4]float64{523.25, 659.25, 783.99, 1046.5}

// PlayThrow marks the start of a delivery: a low sine dropping 80→40 Hz
// with a matching exponential gain decay.
func (e *Engine) PlayThrow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	e.mixer.add(pitchDropVoice(80, 40, 0.2, 0.3))
}

// PlayRelease marks the stone leaving the hand: 200→100 Hz over 0.15s.
func (e *Engine) PlayRelease() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	e.mixer.add(pitchDropVoice(200, 100, 0.15, 0.25))
}

func pitchDropVoice(fromHz, toHz, dur, gain float64) *voice {
	v := newVoice()
	o := newOsc(waveSine, fromHz)
	o.freq.rampExp(0, dur, toHz)
	g := newParam(gain)
	g.rampExp(0, dur, expFloor)
	v.add(&branch{src: o, gain: g})
	v.stopAt = dur
	return v
}

// PlayClick is the UI click: a tiny square-wave blip.
func (e *Engine) PlayClick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	v := newVoice()
	o := newOsc(waveSquare, 1200)
	o.freq.rampExp(0, 0.06, 600)
	g := newParam(0.15)
	g.rampExp(0, 0.06, expFloor)
	v.add(&branch{src: o, gain: g})
	v.stopAt = 0.06
	e.mixer.add(v)
}

// PlayCollision plays a stone-on-stone hit. intensity in (0,1] scales
// pitch, volume, and duration of every layer; non-positive values fall
// back to a typical 0.5 contact.
func (e *Engine) PlayCollision(intensity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	if intensity <= 0 {
		intensity = 0.5
	}
	intensity = clampF(intensity, 0, 1)

	thudDur := 0.1 + 0.2*intensity
	clickDur := 0.04 + 0.04*intensity
	noiseDur := 0.06 + 0.14*intensity

	v := newVoice()

	// Low thud: pitch scales with impact then falls to the floor tone.
	thud := newOsc(waveSine, 150*intensity+50)
	thud.freq.rampExp(0, thudDur, 50)
	tg := newParam(0.5 * intensity)
	tg.rampExp(0, thudDur, expFloor)
	v.add(&branch{src: thud, gain: tg})

	// High click transient.
	click := newOsc(waveSquare, 800)
	click.freq.rampExp(0, clickDur, 200)
	cg := newParam(0.3 * intensity)
	cg.rampExp(0, clickDur, expFloor)
	v.add(&branch{src: click, gain: cg})

	// Granite scatter.
	if buf := e.cache.get(0.3); buf != nil {
		ng := newParam(0.3 * intensity)
		ng.rampExp(0, noiseDur, expFloor)
		v.add(&branch{
			src:  newNoiseBurst(buf, e.randOffset(buf), noiseDur),
			gain: ng,
		})
	}

	v.stopAt = thudDur
	e.mixer.add(v)
}

// PlayScore plays one ascending chord note per point, up to four, each
// offset 0.15s after the last with its own attack/decay envelope.
func (e *Engine) PlayScore(points int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() || points <= 0 {
		return
	}
	if points > len(scoreChord) {
		points = len(scoreChord)
	}
	v := newVoice()
	for i := 0; i < points; i++ {
		o := newOsc(waveSine, scoreChord[i])
		g := newParam(0)
		g.rampLinear(0, 0.02, 0.25)
		g.rampExp(0, 0.35, expFloor)
		v.add(&branch{at: 0.15 * float64(i), src: o, gain: g})
	}
	v.stopAt = 0.15*float64(points-1) + 0.35
	e.mixer.add(v)
}

// PlayVictory plays the ascending four-note triangle fanfare.
func (e *Engine) PlayVictory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	notes := [4]float64{392.00, 493.88, 587.33, 783.99}
	e.mixer.add(melodyVoice(notes[:], waveTriangle, 0.2, 0.4))
}

// PlayDefeat plays the descending four-note sine lament.
func (e *Engine) PlayDefeat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready() {
		return
	}
	notes := [4]float64{523.25, 440.00, 349.23, 261.63}
	e.mixer.add(melodyVoice(notes[:], waveSine, 0.3, 0.55))
}

func melodyVoice(notes []float64, w waveform, spacing, noteDur float64) *voice {
	v := newVoice()
	for i, hz := range notes {
		o := newOsc(w, hz)
		g := newParam(0)
		g.rampLinear(0, 0.015, 0.22)
		g.rampExp(0, noteDur, expFloor)
		v.add(&branch{at: spacing * float64(i), src: o, gain: g})
	}
	v.stopAt = spacing*float64(len(notes)-1) + noteDur
	return v
}

// randOffset picks a start offset into buf so bursts drawn from the same
// cached noise are decorrelated.
func (e *Engine) randOffset(buf *NoiseBuffer) int {
	if len(buf.data) == 0 {
		return 0
	}
	return int(e.rand.NextU64() % uint64(len(buf.data)))
}
