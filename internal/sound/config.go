package sound

// Output format (32-bit float stereo, matching oto.FormatFloat32LE).
const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// Master gain.
const (
	DefaultMasterGain = 0.5
	FastForwardGain   = 0.1
)

// Crowd-size modes.
type CrowdMode int

const (
	ModeArena CrowdMode = iota // competition: full ambience and reactions
	ModeClub                   // practice: scaled-down ambience, no reactions
)

// Ambient crowd bed.
const (
	ambientBaseVolume  = 0.15
	ambientClubScale   = 0.15
	ambientFadeIn      = 1.5 // seconds
	ambientFadeOut     = 0.5
	ambientReleaseMs   = 600 // teardown delay after fade-out starts
	ambientLFORate     = 0.15
	ambientGlideTC     = 0.3 // time constant for volume/intensity glides
	intensityGainFloor = 0.12
	intensityGainSpan  = 0.15
)

// Coarse intensity hysteresis for the anticipation murmur layer.
const (
	intensityMurmurOn  = 0.7
	intensityMurmurOff = 0.5
)

// Sliding-stone rumble loop.
const (
	slidingCutoffHz  = 200.0
	slidingVolCap    = 0.25
	slidingVolScale  = 0.08
	slidingGlideTC   = 0.08
	sweepingBufSecs  = 0.5
	sweepingLoopGain = 0.22
)

// Crowd-reaction engine: anticipation model.
const (
	anticipationTickMs    = 200
	anticipationRiseRate  = 0.15
	anticipationFallRate  = 0.10
	anticipationMinSpeed  = 0.5
	anticipationDistRange = 20.0
	anticipationSpeedNorm = 3.0
	anticipationBase      = 0.7
	anticipationCloseDist = 5.0
	anticipationCloseBump = 0.3
	anticipationVolScale  = 0.15
)

// Tension-tone hysteresis band. The band itself never transitions.
const (
	toneOnThreshold  = 0.6
	toneOffThreshold = 0.4
	toneRampIn       = 1.0 // seconds
	toneRampOut      = 0.3
	toneReleaseMs    = 500
	toneGainScale    = 0.08
)

// Discrete reaction cooldowns.
const (
	gaspCooldownMs   = 2000
	murmurCooldownMs = 3000
)

// Gasp trigger gates, checked in order; first match wins.
const (
	gaspNearCollisionDist  = 0.4
	gaspNearCollisionSpeed = 1.0
	gaspMarginalSpeedLo    = 0.3
	gaspMarginalSpeedHi    = 0.8
	gaspMarginalDistLo     = 1.5
	gaspMarginalDistHi     = 3.0
	gaspDirectHitSpeed     = 2.0
	gaspDirectHitDist      = 2.0
)

// Murmur trigger gates.
const (
	murmurEnterSpeedLo  = 0.5
	murmurEnterSpeedHi  = 2.0
	murmurCenterDist    = 0.5
	murmurCenterSpeedLo = 0.3
	murmurCenterSpeedHi = 1.5
	murmurNeighborDist  = 1.0
	murmurNeighborSpeed = 1.5
)

// Device recovery.
const resumeRetryDelayMs = 300
