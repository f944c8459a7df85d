// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import (
	"fmt"
	"log/slog"
)

// DefaultMaxDepth is the bracket nesting limit used when none is configured.
const DefaultMaxDepth = 1024

type Option func(p *Parser) error

// WithMaxDepth limits how deeply sequences may nest.
// Each level of nesting costs stack, so the limit must be at least 1.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) error {
		if depth < 1 {
			return fmt.Errorf("max depth must be at least 1, got %d", depth)
		}
		p.maxDepth = depth
		return nil
	}
}

// WithLogger sets the logger for parser tracing.
// A nil logger turns tracing off.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) error {
		p.logger = logger
		return nil
	}
}
