// Copyright (c) 2023 Paweł Gaczyński
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ebstack

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultExchangerWait = 10 * time.Millisecond
	defaultLoggerLevel   = zerolog.ErrorLevel
)

type ConfigOption func(*Config)

type Config struct {
	// ExchangerCapacity is the number of rendezvous slots in the elimination array.
	// It is also the widest range a goroutine can search.
	ExchangerCapacity int
	// ExchangerWait bounds a single elimination attempt.
	ExchangerWait time.Duration
	// Blocking makes Pop retry until a value is obtained, instead of giving up
	// after one failed round.
	Blocking bool
	// LoggerLevel is the level of the stack logger.
	LoggerLevel zerolog.Level
	// PrettyLogger switches the logger to human readable console output.
	PrettyLogger bool
	// RecordEvents enables the outcome log returned by Events.
	RecordEvents bool
	// Statistics enables the counters returned by Stats.
	Statistics bool
}

func WithExchangerCapacity(capacity int) ConfigOption {
	return func(c *Config) {
		c.ExchangerCapacity = capacity
	}
}

func WithExchangerWait(wait time.Duration) ConfigOption {
	return func(c *Config) {
		c.ExchangerWait = wait
	}
}

func WithBlocking(blocking bool) ConfigOption {
	return func(c *Config) {
		c.Blocking = blocking
	}
}

func WithLoggerLevel(loggerLevel zerolog.Level) ConfigOption {
	return func(c *Config) {
		c.LoggerLevel = loggerLevel
	}
}

func WithPrettyLogger(prettyLogger bool) ConfigOption {
	return func(c *Config) {
		c.PrettyLogger = prettyLogger
	}
}

func WithEventRecording(recordEvents bool) ConfigOption {
	return func(c *Config) {
		c.RecordEvents = recordEvents
	}
}

func WithStatistics(statistics bool) ConfigOption {
	return func(c *Config) {
		c.Statistics = statistics
	}
}

func NewConfig(opts ...ConfigOption) Config {
	config := Config{
		ExchangerCapacity: runtime.NumCPU(),
		ExchangerWait:     defaultExchangerWait,
		Blocking:          false,
		LoggerLevel:       defaultLoggerLevel,
		PrettyLogger:      false,
		RecordEvents:      false,
		Statistics:        false,
	}
	for _, opt := range opts {
		opt(&config)
	}

	return config
}
