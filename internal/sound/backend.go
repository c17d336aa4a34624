package sound

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/hajimehoshi/oto/v2"
)

// deviceState mirrors the lifecycle of the single output device.
type deviceState int

const (
	deviceUninitialized deviceState = iota
	deviceRunning
	deviceSuspended
	deviceClosed
)

// outputBackend is the capability boundary to the platform audio device.
// start after close reinitializes; everything else is best-effort.
type outputBackend interface {
	start(src io.Reader) error
	suspend() error
	resume() error
	state() deviceState
	close() error
}

var errNoDevice = errors.New("sound: no output device")

// otoBackend drives a real device through oto. The context is created
// once per process; reinitialization after close only rebuilds the
// player.
type otoBackend struct {
	ctx    *oto.Context
	ready  chan struct{}
	player oto.Player
	st     deviceState
}

func newOtoBackend() (outputBackend, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return nil, err
	}
	return &otoBackend{ctx: ctx, ready: ready}, nil
}

func (b *otoBackend) start(src io.Reader) error {
	if b.ctx == nil {
		return errNoDevice
	}
	if b.player != nil && b.st == deviceRunning {
		return nil
	}
	if b.player == nil {
		b.player = b.ctx.NewPlayer(src)
	}
	player := b.player
	ready := b.ready
	// Begin playback once the device reports ready; never block the
	// caller on device spin-up.
	go func() {
		<-ready
		player.Play()
	}()
	b.st = deviceRunning
	return nil
}

func (b *otoBackend) suspend() error {
	if b.st != deviceRunning {
		return nil
	}
	if err := b.ctx.Suspend(); err != nil {
		return err
	}
	b.st = deviceSuspended
	return nil
}

func (b *otoBackend) resume() error {
	if b.st != deviceSuspended {
		return nil
	}
	if err := b.ctx.Resume(); err != nil {
		return err
	}
	b.st = deviceRunning
	return nil
}

func (b *otoBackend) state() deviceState { return b.st }

func (b *otoBackend) close() error {
	if b.player != nil {
		b.player.Close()
		b.player = nil
	}
	b.st = deviceClosed
	return nil
}

// headlessBackend renders on demand instead of driving a device. The
// test suite uses it to pull deterministic audio through the mixer.
type headlessBackend struct {
	src io.Reader
	st  deviceState
	buf []byte
}

func newHeadlessBackend() *headlessBackend {
	return &headlessBackend{}
}

func (b *headlessBackend) start(src io.Reader) error {
	b.src = src
	b.st = deviceRunning
	return nil
}

func (b *headlessBackend) suspend() error {
	if b.st == deviceRunning {
		b.st = deviceSuspended
	}
	return nil
}

func (b *headlessBackend) resume() error {
	if b.st == deviceSuspended {
		b.st = deviceRunning
	}
	return nil
}

func (b *headlessBackend) state() deviceState { return b.st }

func (b *headlessBackend) close() error {
	b.st = deviceClosed
	return nil
}

// advance renders n frames and returns the left channel, or nil when the
// device is not running.
func (b *headlessBackend) advance(frames int) []float64 {
	if b.st != deviceRunning || b.src == nil || frames <= 0 {
		return nil
	}
	need := frames * 8
	if cap(b.buf) < need {
		b.buf = make([]byte, need)
	}
	buf := b.buf[:need]
	if _, err := io.ReadFull(b.src, buf); err != nil {
		return nil
	}
	out := make([]float64, frames)
	for i := range out {
		bits := binary.LittleEndian.Uint32(buf[i*8:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}
