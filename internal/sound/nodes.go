package sound

import "math"

// The building blocks of a signal graph. A voice owns every node it is
// built from; nodes are started once when the voice enters the mixer and
// are never shared between voices or reused after the voice ends.

type waveform int

const (
	waveSine waveform = iota
	waveSquare
	waveSawtooth
	waveTriangle
)

// source produces raw samples. ok=false means the source is exhausted.
type source interface {
	sample(t float64) (v float64, ok bool)
}

// osc is a phase-accumulating oscillator with an automatable frequency,
// so scheduled sweeps stay phase-correct.
type osc struct {
	wave  waveform
	freq  *param
	phase float64
}

func newOsc(w waveform, hz float64) *osc {
	return &osc{wave: w, freq: newParam(hz)}
}

func (o *osc) sample(t float64) (float64, bool) {
	f := o.freq.sample(t)
	o.phase += 2 * math.Pi * f / SampleRate
	switch o.wave {
	case waveSquare:
		if math.Sin(o.phase) >= 0 {
			return 1, true
		}
		return -1, true
	case waveSawtooth:
		u := o.phase / (2 * math.Pi)
		return 2*(u-math.Floor(u)) - 1, true
	case waveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(o.phase)), true
	}
	return math.Sin(o.phase), true
}

// noiseSource plays a window of a shared noise buffer, optionally
// looping. A random start offset decorrelates branches that share one
// cached buffer.
type noiseSource struct {
	buf    *NoiseBuffer
	pos    int
	remain int // samples left when not looping
	loop   bool
}

func newNoiseSource(buf *NoiseBuffer, loop bool) *noiseSource {
	n := 0
	if buf != nil {
		n = len(buf.data)
	}
	return &noiseSource{buf: buf, remain: n, loop: loop}
}

// newNoiseBurst plays dur seconds starting at offset into buf.
func newNoiseBurst(buf *NoiseBuffer, offset int, dur float64) *noiseSource {
	return &noiseSource{buf: buf, pos: offset, remain: int(dur * SampleRate)}
}

func (s *noiseSource) sample(_ float64) (float64, bool) {
	if s.buf == nil || len(s.buf.data) == 0 {
		return 0, false
	}
	if !s.loop {
		if s.remain <= 0 {
			return 0, false
		}
		s.remain--
	}
	if s.pos >= len(s.buf.data) {
		s.pos %= len(s.buf.data)
	}
	v := s.buf.data[s.pos]
	s.pos++
	return v, true
}

// processor is one filter stage.
type processor interface {
	process(t, x float64) float64
}

// onePoleLP is the recursive lowpass smoother used for rumble layers.
type onePoleLP struct {
	k, y float64
}

func newLowpass(hz float64) *onePoleLP {
	return &onePoleLP{k: 1 - math.Exp(-2*math.Pi*hz/SampleRate)}
}

func (f *onePoleLP) process(_, x float64) float64 {
	f.y += f.k * (x - f.y)
	return f.y
}

// onePoleHP is the complement highpass.
type onePoleHP struct {
	lp onePoleLP
}

func newHighpass(hz float64) *onePoleHP {
	return &onePoleHP{lp: onePoleLP{k: 1 - math.Exp(-2*math.Pi*hz/SampleRate)}}
}

func (f *onePoleHP) process(_, x float64) float64 {
	f.lp.y += f.lp.k * (x - f.lp.y)
	return x - f.lp.y
}

// svfBand is a state-variable bandpass with an automatable center
// frequency, used for every swept crowd texture.
type svfBand struct {
	freq      *param
	damp      float64 // 1/Q
	low, band float64
}

func newBandpass(hz, q float64) *svfBand {
	return &svfBand{freq: newParam(hz), damp: 1 / q}
}

func (f *svfBand) process(t, x float64) float64 {
	fc := minF(f.freq.sample(t), SampleRate/6)
	g := 2 * math.Sin(math.Pi*fc/SampleRate)
	f.low += g * f.band
	high := x - f.low - f.damp*f.band
	f.band += g * high
	return f.band
}

// branch is one source-to-sink strand of a voice: a source, a filter
// chain, a gain envelope, and an optional amplitude LFO. at delays the
// branch relative to the voice start; all branch automation runs on the
// branch-local clock.
type branch struct {
	at       float64
	src      source
	chain    []processor
	gain     *param
	lfo      *osc
	lfoBase  float64
	lfoDepth float64
	done     bool
}

func (b *branch) render(t float64) float64 {
	if b.done || t < b.at {
		return 0
	}
	bt := t - b.at
	v, ok := b.src.sample(bt)
	if !ok {
		b.done = true
		return 0
	}
	for _, p := range b.chain {
		v = p.process(bt, v)
	}
	g := b.gain.sample(bt)
	if b.lfo != nil {
		l, _ := b.lfo.sample(bt)
		g *= b.lfoBase + b.lfoDepth*l
	}
	return v * g
}

// voice is a short-lived signal graph: parallel branches summed through
// one gain. It leaves the mixer when its stop time passes, when it is
// killed, or when every branch has played out.
type voice struct {
	start    int64 // mixer frame at add time
	branches []*branch
	gain     *param
	stopAt   float64 // voice-relative seconds; +Inf until scheduled
	killed   bool
	dead     bool
}

func newVoice() *voice {
	return &voice{gain: newParam(1), stopAt: math.Inf(1)}
}

func (v *voice) add(b *branch) *branch {
	v.branches = append(v.branches, b)
	return b
}

func (v *voice) render(t float64) float64 {
	if v.killed || t >= v.stopAt {
		v.dead = true
		return 0
	}
	var s float64
	alive := false
	for _, b := range v.branches {
		s += b.render(t)
		if !b.done {
			alive = true
		}
	}
	if !alive {
		v.dead = true
		return 0
	}
	return s * v.gain.sample(t)
}
