// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

// Package config holds the handful of process-wide knobs the simulation
// core needs at setup time: named, typed settings built with functional
// options, in the manner of the teacher's prefs package, but held entirely
// in memory rather than backed by a preferences file — the device-tree and
// preferences-persistence layer a full front end would add is out of the
// core's scope.
package config

import "github.com/jetsetilly/uarchsim/sim/simerrors"

// Config collects every process-wide setting the core consults at setup.
type Config struct {
	// ResidencyEnabled opts every constructed EnumState into residency
	// tracking via a pool the host must still construct and attach.
	ResidencyEnabled bool

	// DefaultClockPeriod is the root-clock period (in root ticks) used for
	// a derived clock domain when the caller doesn't specify one.
	DefaultClockPeriod uint64

	// AsyncQueueCapacity is the initial capacity reserved for the
	// scheduler's cross-thread async inbox.
	AsyncQueueCapacity int

	// LoggerCapacity is the number of entries the core's ring-buffer logger
	// retains before discarding the oldest.
	LoggerCapacity int
}

// Option configures a Config at construction.
type Option func(*Config)

// WithResidency opts into (or explicitly out of) residency tracking.
func WithResidency(enabled bool) Option {
	return func(c *Config) { c.ResidencyEnabled = enabled }
}

// WithDefaultClockPeriod sets the period used for a clock domain derived
// without an explicit period.
func WithDefaultClockPeriod(period uint64) Option {
	return func(c *Config) { c.DefaultClockPeriod = period }
}

// WithAsyncQueueCapacity sets the async inbox's initial reserved capacity.
func WithAsyncQueueCapacity(n int) Option {
	return func(c *Config) { c.AsyncQueueCapacity = n }
}

// WithLoggerCapacity sets the ring-buffer logger's retained entry count.
func WithLoggerCapacity(n int) Option {
	return func(c *Config) { c.LoggerCapacity = n }
}

// defaults mirror the teacher's own conservative preference defaults: small
// enough to be cheap, large enough to be useful out of the box.
func defaults() Config {
	return Config{
		ResidencyEnabled:   false,
		DefaultClockPeriod: 1,
		AsyncQueueCapacity: 16,
		LoggerCapacity:     256,
	}
}

// New builds a Config from defaults, applying opts in order, and validates
// the result.
func New(opts ...Option) (*Config, error) {
	c := defaults()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Config) validate() error {
	if c.DefaultClockPeriod == 0 {
		return simerrors.Errorf(simerrors.ConfigurationError, "default clock period must be at least 1")
	}
	if c.AsyncQueueCapacity < 0 {
		return simerrors.Errorf(simerrors.ConfigurationError, "async queue capacity must not be negative")
	}
	if c.LoggerCapacity < 1 {
		return simerrors.Errorf(simerrors.ConfigurationError, "logger capacity must be at least 1")
	}
	return nil
}
