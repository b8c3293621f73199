package evmscript

import "go.uber.org/zap"

// Option configures a Codec.
type Option func(*codecConfig)

// codecConfig holds configuration for a Codec.
type codecConfig struct {
	logger       *zap.Logger
	checkAgents  bool
	strictDecode bool
}

// defaultCodecConfig returns the default codec configuration.
func defaultCodecConfig() *codecConfig {
	return &codecConfig{
		logger:       zap.NewNop(),
		checkAgents:  false,
		strictDecode: false,
	}
}

// WithLogger sets the logger used to report encode and decode failures.
// A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *codecConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAgentCheck makes decoding reject scripts whose agent address is not
// in the codec's agent map. Disabled by default.
func WithAgentCheck(enabled bool) Option {
	return func(c *codecConfig) {
		c.checkAgents = enabled
	}
}

// WithStrictDecode makes decoding reject scripts whose spec id is not 1,
// whose declared length differs from the call-data length, or whose execute
// or target selector does not match. Disabled by default.
func WithStrictDecode(enabled bool) Option {
	return func(c *codecConfig) {
		c.strictDecode = enabled
	}
}
