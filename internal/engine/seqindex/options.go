package seqindex

import "go.uber.org/zap"

// Default configuration values.
const (
	DefaultBlockCapacity = 64
	DefaultMaxLevels     = 32

	// MinBlockCapacity is the smallest usable block capacity.
	MinBlockCapacity = 2

	// MaxLevelsLimit bounds WithMaxLevels.
	MaxLevelsLimit = 64
)

// Leveling selects the promotion policy for new level-0 nodes.
type Leveling uint8

const (
	// LevelingRandom promotes each node with probability 1/k per level.
	LevelingRandom Leveling = iota

	// LevelingDeterministic promotes every k-th node, every k²-th node twice,
	// and so on.
	LevelingDeterministic
)

// String returns the policy name used in configuration files.
func (l Leveling) String() string {
	switch l {
	case LevelingRandom:
		return "random"
	case LevelingDeterministic:
		return "deterministic"
	default:
		return "unknown"
	}
}

// ParseLeveling converts a configuration name into a Leveling.
func ParseLeveling(s string) (Leveling, bool) {
	switch s {
	case "random", "":
		return LevelingRandom, true
	case "deterministic":
		return LevelingDeterministic, true
	default:
		return 0, false
	}
}

type options struct {
	capacity  int
	maxLevels int
	nodeLimit int
	leveling  Leveling
	leveler   Leveler
	seed      uint64
	seeded    bool
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		capacity:  DefaultBlockCapacity,
		maxLevels: DefaultMaxLevels,
		leveling:  LevelingRandom,
	}
}

// Option configures an Index during creation.
type Option func(*options)

// WithBlockCapacity sets k, the number of items a block can hold.
// Values below MinBlockCapacity are rejected by NewChecked and clamped by New.
func WithBlockCapacity(k int) Option {
	return func(o *options) {
		o.capacity = k
	}
}

// WithMaxLevels sets the number of tower slots.
func WithMaxLevels(n int) Option {
	return func(o *options) {
		if n > 0 && n <= MaxLevelsLimit {
			o.maxLevels = n
		}
	}
}

// WithNodeLimit caps the number of live nodes. Zero means unlimited.
// Insertions that would exceed the limit fail with ErrOutOfMemory.
func WithNodeLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.nodeLimit = n
		}
	}
}

// WithLeveling selects the promotion policy.
func WithLeveling(l Leveling) Option {
	return func(o *options) {
		o.leveling = l
	}
}

// WithLeveler installs a custom promotion policy. It takes precedence over
// WithLeveling and WithSeed.
func WithLeveler(l Leveler) Option {
	return func(o *options) {
		o.leveler = l
	}
}

// WithSeed seeds the random promotion policy.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithLogger sets the logger for structural events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
