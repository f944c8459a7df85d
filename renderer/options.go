// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package renderer

import "fmt"

type Option func(r *Renderer) error

// WithIndent sets the string written once per level of nesting.
func WithIndent(indent string) Option {
	return func(r *Renderer) error {
		if indent == "" {
			return fmt.Errorf("indent must not be empty")
		}
		r.indent = indent
		return nil
	}
}

// WithQuoted controls whether text content is written as a Go quoted string.
// Without quoting, new-lines and other control codes are written as-is.
func WithQuoted(flag bool) Option {
	return func(r *Renderer) error {
		r.quoted = flag
		return nil
	}
}

// WithSummary adds a closing line with node counts and nesting depth.
func WithSummary(flag bool) Option {
	return func(r *Renderer) error {
		r.summary = flag
		return nil
	}
}
