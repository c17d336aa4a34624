package sound

import (
	"math"
	"sync"
)

// mixer sums every active voice through the master gain and serves the
// result to the output backend as float32LE stereo. The mutex covers the
// voice list and all reachable params: command calls mutate automation
// under edit, the backend's render goroutine reads under Read.
type mixer struct {
	mu     sync.Mutex
	frame  int64
	voices []*voice
	master *param
}

func newMixer() *mixer {
	return &mixer{master: newParam(DefaultMasterGain)}
}

// edit runs fn with the mixer locked, so a group of automation changes is
// atomic with respect to the render loop.
func (m *mixer) edit(fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
}

// seconds returns the mixer clock. Call only inside edit or Read.
func (m *mixer) seconds() float64 {
	return float64(m.frame) / SampleRate
}

// voiceTime returns v's local clock. Call only inside edit or Read.
func (m *mixer) voiceTime(v *voice) float64 {
	return float64(m.frame-v.start) / SampleRate
}

func (m *mixer) add(v *voice) {
	m.mu.Lock()
	v.start = m.frame
	m.voices = append(m.voices, v)
	m.mu.Unlock()
}

// kill marks v for removal. Safe on voices that already left the mixer.
func (m *mixer) kill(v *voice) {
	m.mu.Lock()
	v.killed = true
	m.mu.Unlock()
}

func (m *mixer) activeVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read implements io.Reader for the output backend: an endless stereo
// float32LE stream, silent when no voices are active.
func (m *mixer) Read(p []byte) (int, error) {
	frames := len(p) / 8
	m.mu.Lock()
	for i := 0; i < frames; i++ {
		t := float64(m.frame) / SampleRate
		var s float64
		for _, v := range m.voices {
			s += v.render(float64(m.frame-v.start) / SampleRate)
		}
		s *= m.master.sample(t)
		putStereoF32(p, i, softSat(s))
		m.frame++
	}
	// Sweep voices that finished during this block.
	kept := m.voices[:0]
	for _, v := range m.voices {
		if !v.dead {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = kept
	m.mu.Unlock()
	return frames * 8, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo
// channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// softSat applies gentle tanh-like saturation so stacked reactions never
// clip harshly.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/x
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}
