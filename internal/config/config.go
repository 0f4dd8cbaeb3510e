package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/blocklane/internal/config/loader"
	"github.com/dshills/blocklane/internal/engine"
	"github.com/dshills/blocklane/internal/engine/seqindex"
)

// Config holds every blocklane setting.
type Config struct {
	Index   IndexConfig   `toml:"index"`
	History HistoryConfig `toml:"history"`
	Logging LoggingConfig `toml:"logging"`
}

// IndexConfig configures the sequence index.
type IndexConfig struct {
	BlockCapacity int    `toml:"block_capacity"`
	MaxLevels     int    `toml:"max_levels"`
	Leveling      string `toml:"leveling"` // "random" or "deterministic"
	Seed          uint64 `toml:"seed"`     // 0 picks a random seed
	NodeLimit     int    `toml:"node_limit"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	MaxUndo int `toml:"max_undo"`
}

// LoggingConfig configures the zap logger built by NewLogger.
type LoggingConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"` // "json" or "console"
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Index: IndexConfig{
			BlockCapacity: seqindex.DefaultBlockCapacity,
			MaxLevels:     seqindex.DefaultMaxLevels,
			Leveling:      seqindex.LevelingRandom.String(),
		},
		History: HistoryConfig{
			MaxUndo: engine.DefaultMaxUndoEntries,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

type loadSettings struct {
	fs        loader.FileSystem
	envPrefix string
	useEnv    bool
}

// LoadOption configures Load.
type LoadOption func(*loadSettings)

// WithFileSystem reads configuration files from fsys.
func WithFileSystem(fsys loader.FileSystem) LoadOption {
	return func(s *loadSettings) {
		s.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) LoadOption {
	return func(s *loadSettings) {
		s.envPrefix = prefix
	}
}

// WithoutEnv ignores environment variables.
func WithoutEnv() LoadOption {
	return func(s *loadSettings) {
		s.useEnv = false
	}
}

// Load builds settings from the defaults, the TOML file at path and the
// environment, then validates them. An empty path or a missing file only
// skips that layer.
func Load(path string, opts ...LoadOption) (*Config, error) {
	s := loadSettings{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(&s)
	}

	layers := []loader.Loader{loader.NewTOMLLoaderWithFS(s.fs, path)}
	if s.useEnv {
		layers = append(layers, loader.NewEnvLoader(s.envPrefix))
	}

	var merged map[string]any
	for _, l := range layers {
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// apply decodes a raw settings map over c. Keys absent from m keep their
// current values.
func (c *Config) apply(m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	seed, hasSeed := takeUnsignedSeed(m)
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode merged settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return &ValidationError{Path: "config", Message: strict.String(), Code: ErrCodeUnknownSetting}
		}
		return &ValidationError{Path: "config", Message: err.Error(), Code: ErrCodeTypeMismatch}
	}
	if hasSeed {
		c.Index.Seed = seed
	}
	return nil
}

// takeUnsignedSeed removes an index.seed above math.MaxInt64 from m and
// returns it. TOML integers are signed, so such a seed can only arrive from
// the environment and cannot be re-encoded.
func takeUnsignedSeed(m map[string]any) (uint64, bool) {
	index, ok := m["index"].(map[string]any)
	if !ok {
		return 0, false
	}
	seed, ok := index["seed"].(uint64)
	if !ok {
		return 0, false
	}
	delete(index, "seed")
	return seed, true
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if c.Index.BlockCapacity < seqindex.MinBlockCapacity {
		bad("index.block_capacity", fmt.Sprintf("must be at least %d", seqindex.MinBlockCapacity),
			c.Index.BlockCapacity, ErrCodeOutOfRange)
	}
	if c.Index.MaxLevels < 1 || c.Index.MaxLevels > seqindex.MaxLevelsLimit {
		bad("index.max_levels", fmt.Sprintf("must be between 1 and %d", seqindex.MaxLevelsLimit),
			c.Index.MaxLevels, ErrCodeOutOfRange)
	}
	if _, ok := seqindex.ParseLeveling(c.Index.Leveling); !ok {
		bad("index.leveling", `must be "random" or "deterministic"`, c.Index.Leveling, ErrCodeInvalidEnum)
	}
	if c.Index.NodeLimit < 0 {
		bad("index.node_limit", "must not be negative", c.Index.NodeLimit, ErrCodeOutOfRange)
	}
	if c.History.MaxUndo < 0 {
		bad("history.max_undo", "must not be negative", c.History.MaxUndo, ErrCodeOutOfRange)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		bad("logging.level", "unknown level", c.Logging.Level, ErrCodeInvalidEnum)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		bad("logging.encoding", `must be "json" or "console"`, c.Logging.Encoding, ErrCodeInvalidEnum)
	}

	return errors.Join(errs...)
}

// IndexOptions converts the index settings into seqindex options.
func (c *Config) IndexOptions() []seqindex.Option {
	leveling, _ := seqindex.ParseLeveling(c.Index.Leveling)
	opts := []seqindex.Option{
		seqindex.WithBlockCapacity(c.Index.BlockCapacity),
		seqindex.WithMaxLevels(c.Index.MaxLevels),
		seqindex.WithLeveling(leveling),
		seqindex.WithNodeLimit(c.Index.NodeLimit),
	}
	if c.Index.Seed != 0 {
		opts = append(opts, seqindex.WithSeed(c.Index.Seed))
	}
	return opts
}

// EngineOptions converts the settings into engine options using logger.
func (c *Config) EngineOptions(logger *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithIndexOptions(c.IndexOptions()...),
		engine.WithMaxUndoEntries(c.History.MaxUndo),
		engine.WithLogger(logger),
	}
}

// NewLogger builds a zap logger from the logging settings.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level, Code: ErrCodeInvalidEnum}
	}

	zc := zap.NewProductionConfig()
	if c.Logging.Encoding == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
