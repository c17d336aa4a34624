package sound

import "math"

type curveKind int

const (
	curveStep curveKind = iota
	curveLinear
	curveExp
)

// span is one scheduled segment of a parameter's control curve.
type span struct {
	t0, t1 float64
	v0, v1 float64
	kind   curveKind
}

// expFloor keeps exponential ramp endpoints away from zero, where the
// curve is undefined.
const expFloor = 1e-4

// param is an automatable scalar evaluated on its owner's clock (mixer
// time for the master gain, voice time for everything else). Scheduled
// spans and glide targets are mutually exclusive: setting either cancels
// the other, and setNow cancels both — an immediate set always wins over
// a previously scheduled ramp.
type param struct {
	value  float64
	spans  []span
	glide  bool
	target float64
	coeff  float64 // per-sample glide coefficient
}

func newParam(v float64) *param { return &param{value: v} }

// setNow cancels all pending automation and jumps to v.
func (p *param) setNow(v float64) {
	p.spans = p.spans[:0]
	p.glide = false
	p.value = v
}

// endState returns the time and value at the end of all scheduled spans,
// used to chain ramps back to back.
func (p *param) endState(now float64) (float64, float64) {
	if n := len(p.spans); n > 0 {
		s := p.spans[n-1]
		return s.t1, s.v1
	}
	return now, p.value
}

func (p *param) push(s span) {
	p.glide = false
	p.spans = append(p.spans, s)
}

// setAt schedules a step to v at time t.
func (p *param) setAt(t, v float64) {
	p.push(span{t0: t, t1: t, v0: v, v1: v, kind: curveStep})
}

// rampLinear schedules a linear ramp ending at (t, v), starting from the
// end of the previous automation or from the current value at now.
func (p *param) rampLinear(now, t, v float64) {
	t0, v0 := p.endState(now)
	p.push(span{t0: t0, t1: t, v0: v0, v1: v, kind: curveLinear})
}

// rampExp schedules an exponential ramp ending at (t, v).
func (p *param) rampExp(now, t, v float64) {
	t0, v0 := p.endState(now)
	if math.Abs(v0) < expFloor {
		v0 = expFloor
	}
	if math.Abs(v) < expFloor {
		v = expFloor
	}
	p.push(span{t0: t0, t1: t, v0: v0, v1: v, kind: curveExp})
}

// cancelAndRampLinear drops all pending automation and ramps from the
// value the param holds at now down to (t, v). Fade-outs use this so a
// stop issued mid-fade-in falls from the level actually reached instead
// of chaining past the end of the pending rise.
func (p *param) cancelAndRampLinear(now, t, v float64) {
	cur := p.sample(now)
	p.spans = p.spans[:0]
	p.value = cur
	p.push(span{t0: now, t1: t, v0: cur, v1: v, kind: curveLinear})
}

// setTarget glides toward v with time constant tc seconds, cancelling any
// scheduled spans.
func (p *param) setTarget(v, tc float64) {
	p.spans = p.spans[:0]
	p.glide = true
	p.target = v
	p.coeff = 1 - math.Exp(-1/(tc*SampleRate))
}

// sample advances the param to time t and returns its value. t moves
// forward one sample step per call.
func (p *param) sample(t float64) float64 {
	if p.glide {
		p.value += (p.target - p.value) * p.coeff
		return p.value
	}
	for len(p.spans) > 0 {
		s := p.spans[0]
		if t < s.t0 {
			break
		}
		if t < s.t1 {
			p.value = s.at(t)
			return p.value
		}
		p.value = s.v1
		p.spans = p.spans[1:]
	}
	return p.value
}

func (s span) at(t float64) float64 {
	u := (t - s.t0) / (s.t1 - s.t0)
	switch s.kind {
	case curveLinear:
		return s.v0 + (s.v1-s.v0)*u
	case curveExp:
		return s.v0 * math.Pow(s.v1/s.v0, u)
	}
	return s.v1
}
