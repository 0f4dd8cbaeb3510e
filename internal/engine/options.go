package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/blocklane/internal/engine/seqindex"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
)

// settings collects options before the engine's item type is fixed.
type settings struct {
	indexOpts      []seqindex.Option
	content        any
	maxUndoEntries int
	readOnly       bool
	logger         *zap.Logger
}

// Option configures an Engine during creation.
type Option func(*settings)

// WithIndexOptions passes options through to the underlying index.
func WithIndexOptions(opts ...seqindex.Option) Option {
	return func(s *settings) {
		s.indexOpts = append(s.indexOpts, opts...)
	}
}

// WithContent sets the initial items of the engine. The item type must
// match the engine's.
func WithContent[T any](items []T) Option {
	return func(s *settings) {
		s.content = items
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUndoEntries = n
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(s *settings) {
		s.readOnly = true
	}
}

// WithLogger sets the logger for the engine and its index.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
