package sound

import (
	"math"
	"time"
)

// StoneKinematics is the per-frame physical snapshot supplied by the
// physics engine: a read-only value, never retained beyond one update.
type StoneKinematics struct {
	Speed           float64
	DistToCenter    float64 // distance from the house center
	NeighborDist    float64 // distance to the nearest other stone
	HasNeighbor     bool
	InTarget        bool
	HeadingToTarget bool
}

// reactionEngine turns kinematics into crowd behavior: a smoothed
// anticipation scalar feeding the ambient bed, a hysteresis-gated
// tension tone, and cooldown-gated gasp/murmur triggers.
type reactionEngine struct {
	e            *Engine
	anticipation float64
	lastTick     time.Time
	lastGasp     time.Time
	lastMurmur   time.Time
	tone         *voice
	toneGain     *param
}

func (r *reactionEngine) update(k StoneKinematics) {
	e := r.e
	if !e.crowdReady() {
		return
	}
	now := e.now()

	// Anticipation glides toward its target every frame, faster on the
	// way up than on the way down. Pushing the resulting volume bonus
	// into the ambient bed reschedules device automation, so that side
	// is rate-limited to once per tick window.
	target := 0.0
	if k.HeadingToTarget && k.Speed > anticipationMinSpeed {
		distFactor := math.Max(0, 1-k.DistToCenter/anticipationDistRange)
		speedFactor := math.Min(1, k.Speed/anticipationSpeedNorm)
		target = distFactor * speedFactor * anticipationBase
		if k.DistToCenter < anticipationCloseDist {
			target = math.Min(1, target+anticipationCloseBump)
		}
	}
	factor := anticipationFallRate
	if target > r.anticipation {
		factor = anticipationRiseRate
	}
	r.anticipation += (target - r.anticipation) * factor
	if r.lastTick.IsZero() || now.Sub(r.lastTick) >= anticipationTickMs*time.Millisecond {
		r.lastTick = now
		e.ambient.setBonus(r.anticipation * anticipationVolScale)
	}

	// Tension tone with a dead band: starts above 0.6, stops below 0.4,
	// and never transitions inside [0.4, 0.6].
	if r.anticipation > toneOnThreshold && r.tone == nil {
		r.startTone()
	} else if r.anticipation < toneOffThreshold && r.tone != nil {
		r.stopTone()
	}

	if now.Sub(r.lastGasp) >= gaspCooldownMs*time.Millisecond && gaspTriggered(k) {
		e.gasp()
		r.lastGasp = now
	}
	if now.Sub(r.lastMurmur) >= murmurCooldownMs*time.Millisecond && murmurTriggered(k) {
		e.murmur()
		r.lastMurmur = now
	}
}

// gaspTriggered checks the three gasp gates in order; first match wins.
func gaspTriggered(k StoneKinematics) bool {
	switch {
	case k.HasNeighbor && k.NeighborDist < gaspNearCollisionDist && k.Speed > gaspNearCollisionSpeed:
		return true // near collision
	case k.Speed > gaspMarginalSpeedLo && k.Speed < gaspMarginalSpeedHi &&
		k.DistToCenter > gaspMarginalDistLo && k.DistToCenter < gaspMarginalDistHi:
		return true // marginal approach, could go either way
	case k.Speed > gaspDirectHitSpeed && k.DistToCenter < gaspDirectHitDist && k.InTarget:
		return true // coming in hot and direct
	}
	return false
}

func murmurTriggered(k StoneKinematics) bool {
	switch {
	case k.InTarget && k.Speed > murmurEnterSpeedLo && k.Speed < murmurEnterSpeedHi:
		return true // entering the house at a deliberate pace
	case k.DistToCenter < murmurCenterDist && k.Speed > murmurCenterSpeedLo && k.Speed < murmurCenterSpeedHi:
		return true // on line for the button
	case k.HasNeighbor && k.NeighborDist < murmurNeighborDist && k.Speed > murmurNeighborSpeed:
		return true // closing fast on another stone
	}
	return false
}

// startTone raises the continuous low tension layer: filtered noise with
// a slow pulsing LFO, ramped in over a second to a level scaled by the
// current game intensity.
func (r *reactionEngine) startTone() {
	e := r.e
	buf := e.cache.get(2.0)
	if buf == nil {
		return
	}
	v := newVoice()
	g := newParam(0)
	g.rampLinear(0, toneRampIn, toneGainScale*e.ambient.currentIntensity())
	v.add(&branch{
		src:      &noiseSource{buf: buf, pos: e.randOffset(buf), loop: true},
		chain:    []processor{newBandpass(220, 4)},
		gain:     g,
		lfo:      newOsc(waveSine, 1.3),
		lfoBase:  0.8,
		lfoDepth: 0.2,
	})
	r.tone = v
	r.toneGain = g
	e.mixer.add(v)
}

// stopTone ramps the tone out and releases its nodes once the ramp has
// completed. The deferred kill captures this tone's voice, so a tone
// started later is never affected by it. The release task is the only
// scheduled stop the looping tone has; it always fires.
func (r *reactionEngine) stopTone() {
	v := r.tone
	g := r.toneGain
	if v == nil {
		return
	}
	r.tone = nil
	r.toneGain = nil
	e := r.e
	e.mixer.edit(func() {
		vt := e.mixer.voiceTime(v)
		g.cancelAndRampLinear(vt, vt+toneRampOut, 0)
	})
	e.after(toneReleaseMs*time.Millisecond, func() {
		e.locked(func() {
			e.mixer.kill(v)
		})
	})
}

// reset zeroes anticipation, force-stops the tension tone, and clears
// all cooldowns. Called between throws or when the stone comes to rest.
func (r *reactionEngine) reset() {
	r.anticipation = 0
	r.lastTick = time.Time{}
	r.lastGasp = time.Time{}
	r.lastMurmur = time.Time{}
	if r.tone != nil {
		r.e.mixer.kill(r.tone)
		r.tone = nil
		r.toneGain = nil
	}
	r.e.ambient.setBonus(0)
}

// UpdateLiveCrowdReaction consumes one kinematics frame from the
// simulation loop.
func (e *Engine) UpdateLiveCrowdReaction(k StoneKinematics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.reaction.update(k)
}

// ResetLiveReactions clears the reaction state between throws.
func (e *Engine) ResetLiveReactions() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.reaction.reset()
}

// Anticipation exposes the smoothed [0,1] tension scalar, for UI meters
// and tests.
func (e *Engine) Anticipation() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reaction.anticipation
}
