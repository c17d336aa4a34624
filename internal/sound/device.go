package sound

import "time"

// deviceHost owns the output backend and the master gain. It is the only
// component allowed to touch the device handle; everything else reaches
// the device through the mixer it feeds. Methods are called with the
// engine lock held.
type deviceHost struct {
	mixer       *mixer
	backend     outputBackend
	newBackend  func() (outputBackend, error)
	enabled     bool
	fastForward bool
	userVolume  float64
	logf        func(format string, args ...any)
	after       func(d time.Duration, fn func())
}

func newDeviceHost(m *mixer, factory func() (outputBackend, error)) *deviceHost {
	return &deviceHost{
		mixer:      m,
		newBackend: factory,
		userVolume: DefaultMasterGain,
		logf:       func(string, ...any) {},
	}
}

// ensure lazily creates the device on first use, restarts it if it was
// observed closed, and resumes it if suspended. Returns false when no
// device is available; callers treat that as "stay silent".
func (h *deviceHost) ensure() bool {
	if !h.enabled {
		return false
	}
	if h.backend == nil {
		if h.newBackend == nil {
			return false
		}
		b, err := h.newBackend()
		if err != nil {
			h.logf("audio device unavailable: %v", err)
			h.newBackend = nil
			return false
		}
		h.backend = b
	}
	switch h.backend.state() {
	case deviceUninitialized, deviceClosed:
		if err := h.backend.start(h.mixer); err != nil {
			h.logf("audio device start: %v", err)
			return false
		}
	case deviceSuspended:
		if err := h.backend.resume(); err != nil {
			h.logf("audio device resume: %v", err)
			return false
		}
	}
	return true
}

func (h *deviceHost) setEnabled(enabled bool) {
	h.enabled = enabled
	if enabled {
		h.ensure()
		return
	}
	// Leave the device idle, not destroyed: a later enable resumes it.
	if h.backend != nil {
		if err := h.backend.suspend(); err != nil {
			h.logf("audio device suspend: %v", err)
		}
	}
}

// ready reports whether playback can proceed right now. A closed device
// is reinitialized lazily here rather than failing the call.
func (h *deviceHost) ready() bool {
	if !h.enabled || h.backend == nil {
		return false
	}
	if h.backend.state() != deviceRunning {
		return h.ensure()
	}
	return true
}

// setFastForward ducks the master gain while the simulation skips ahead.
// The set cancels pending ramps first so a competing envelope cannot
// later override the duck.
func (h *deviceHost) setFastForward(active bool) {
	h.fastForward = active
	target := h.userVolume
	if active {
		target = FastForwardGain
	}
	h.mixer.edit(func() {
		h.mixer.master.setNow(target)
	})
}

// restoreVolume is the recovery hook after suspected audio-state
// corruption: cancel everything pending on the master gain and force the
// default level.
func (h *deviceHost) restoreVolume() {
	h.fastForward = false
	h.userVolume = DefaultMasterGain
	h.mixer.edit(func() {
		h.mixer.master.setNow(DefaultMasterGain)
	})
}

// setUserVolume applies the persisted volume preference. A fast-forward
// duck in progress keeps priority until it clears.
func (h *deviceHost) setUserVolume(v float64) {
	h.userVolume = clampF(v, 0, 1)
	if h.fastForward {
		return
	}
	h.mixer.edit(func() {
		h.mixer.master.setNow(h.userVolume)
	})
}

// onInterruption handles a device-interruption or visibility hint: if the
// engine is enabled but the device is not running, try a resume after a
// short delay. Failures are logged and retried passively on the next
// such event.
func (h *deviceHost) onInterruption(lock func(fn func())) {
	if !h.enabled || h.backend == nil || h.backend.state() == deviceRunning {
		return
	}
	h.after(resumeRetryDelayMs*time.Millisecond, func() {
		lock(func() {
			if !h.enabled || h.backend == nil {
				return
			}
			if h.backend.state() == deviceRunning {
				return
			}
			if !h.ensure() {
				h.logf("audio device resume retry failed; will retry on next interruption event")
			}
		})
	})
}

func (h *deviceHost) closeDevice() {
	if h.backend == nil {
		return
	}
	if err := h.backend.close(); err != nil {
		h.logf("audio device close: %v", err)
	}
}
