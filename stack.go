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
	"time"

	"github.com/pawelgaczynski/ebstack/logger"
	"github.com/pawelgaczynski/ebstack/pkg/elimination"
	ebErrors "github.com/pawelgaczynski/ebstack/pkg/errors"
	syncPool "github.com/pawelgaczynski/ebstack/pkg/pool/sync"
	"github.com/pawelgaczynski/ebstack/pkg/stack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BackingStack is the shared stack the elimination layer sits on. Both methods
// must make a single, non-blocking attempt and be safe for concurrent use.
// TryPop returns nil when it could not unlink a node.
type BackingStack[T any] interface {
	TryPush(node *stack.Node[T]) bool
	TryPop() *stack.Node[T]
}

type lener interface {
	Len() int
}

type emptier interface {
	Empty() bool
}

// EliminationBackoffStack is a lock-free LIFO stack that pairs concurrent pushes
// and pops through an elimination array whenever the backing stack is contended.
type EliminationBackoffStack[T any] struct {
	backing          BackingStack[T]
	eliminationArray *elimination.Array[T]
	policies         syncPool.Pool[*elimination.RangePolicy]
	events           *eventRecorder[T]
	counters         counters
	config           Config
	logger           zerolog.Logger
}

// New creates a stack backed by a lock-free Treiber stack. The positional
// arguments take precedence over the same settings passed in opts.
func New[T any](
	exchangerCapacity int, exchangerWait time.Duration, blocking bool, opts ...ConfigOption,
) (*EliminationBackoffStack[T], error) {
	options := make([]ConfigOption, 0, len(opts)+3)
	options = append(options, opts...)
	options = append(options,
		WithExchangerCapacity(exchangerCapacity),
		WithExchangerWait(exchangerWait),
		WithBlocking(blocking),
	)

	return NewWithConfig[T](NewConfig(options...))
}

func NewWithConfig[T any](config Config) (*EliminationBackoffStack[T], error) {
	return NewWithBackingStack[T](stack.NewLockFreeStack[T](), config)
}

func NewWithBackingStack[T any](backing BackingStack[T], config Config) (*EliminationBackoffStack[T], error) {
	if err := validateConfig(backing, config); err != nil {
		return nil, errors.Wrap(err, "creating elimination stack")
	}

	maxRange := config.ExchangerCapacity
	s := &EliminationBackoffStack[T]{
		backing:          backing,
		eliminationArray: elimination.NewArray[T](config.ExchangerCapacity, config.ExchangerWait),
		policies: syncPool.NewPool(func() *elimination.RangePolicy {
			return elimination.NewRangePolicy(maxRange)
		}),
		events: newEventRecorder[T](config.RecordEvents),
		config: config,
		logger: logger.NewLogger("ebstack", config.LoggerLevel, config.PrettyLogger),
	}
	s.counters.enabled = config.Statistics

	s.logger.Info().
		Int("exchanger capacity", config.ExchangerCapacity).
		Dur("exchanger wait", config.ExchangerWait).
		Bool("blocking", config.Blocking).
		Bool("events", config.RecordEvents).
		Bool("statistics", config.Statistics).
		Msg("Elimination stack created")

	return s, nil
}

func validateConfig[T any](backing BackingStack[T], config Config) error {
	if backing == nil {
		return ebErrors.ErrNilBackingStack
	}

	if config.ExchangerCapacity < 1 {
		return ebErrors.ErrorInvalidCapacity(config.ExchangerCapacity)
	}

	if config.ExchangerWait <= 0 {
		return ebErrors.ErrorInvalidTimeDuration("exchanger wait", config.ExchangerWait)
	}

	return nil
}

// Push puts value on top of the stack. It never fails: it retries until the
// value is linked into the backing stack or handed over to a concurrent Pop.
func (s *EliminationBackoffStack[T]) Push(value T) {
	policy := s.policies.Get()
	defer s.policies.Put(policy)

	node := stack.NewNode(value)

	for {
		if s.backing.TryPush(node) {
			s.recordRound(OpPush, OutcomeStack, policy, value)

			return
		}

		other, err := s.eliminationArray.Visit(&value, policy.Range())

		switch {
		case err != nil:
			policy.RecordEliminationTimeout()
			s.recordRound(OpPush, OutcomeTimeout, policy, value)

		case other == nil:
			policy.RecordEliminationSuccess()
			s.recordRound(OpPush, OutcomeEliminated, policy, value)

			return

		default:
			// Another pusher took our offer and we took its; both still own
			// their values and retry.
			s.recordRound(OpPush, OutcomeCollision, policy, value)
		}
	}
}

// Pop removes and returns the top value. In non-blocking mode the second
// result is false when no value was obtained in one round; in blocking mode
// Pop retries until a value is available.
func (s *EliminationBackoffStack[T]) Pop() (T, bool) {
	var zero T

	policy := s.policies.Get()
	defer s.policies.Put(policy)

	for {
		if node := s.backing.TryPop(); node != nil {
			s.recordRound(OpPop, OutcomeStack, policy, node.Value())

			return node.Value(), true
		}

		other, err := s.eliminationArray.Visit(nil, policy.Range())

		switch {
		case err != nil:
			policy.RecordEliminationTimeout()
			s.recordRound(OpPop, OutcomeTimeout, policy, zero)

		case other != nil:
			policy.RecordEliminationSuccess()
			s.recordRound(OpPop, OutcomeEliminated, policy, *other)

			return *other, true

		default:
			s.recordRound(OpPop, OutcomeCollision, policy, zero)
		}

		if !s.config.Blocking {
			s.recordRound(OpPop, OutcomeEmpty, policy, zero)

			return zero, false
		}
	}
}

func (s *EliminationBackoffStack[T]) recordRound(op Op, outcome Outcome, policy *elimination.RangePolicy, value T) {
	s.counters.add(op, outcome)
	s.events.record(op, outcome, policy.Range(), value)

	var event *zerolog.Event

	switch outcome {
	case OutcomeCollision, OutcomeEmpty:
		event = s.logDebug().Int64("policies", s.policies.Created())
	default:
		event = s.logTrace()
	}

	event.
		Str("op", op.String()).
		Str("outcome", outcome.String()).
		Int("range", policy.Range()).
		Int("max range", policy.MaxRange()).
		Msg("Round completed")
}

// Len returns the number of values linked in the backing stack, or -1 when the
// backing stack does not report its length.
func (s *EliminationBackoffStack[T]) Len() int {
	if l, ok := s.backing.(lener); ok {
		return l.Len()
	}

	return -1
}

// Empty reports whether the backing stack holds no values. Without an Empty or
// Len method on the backing stack it always reports false.
func (s *EliminationBackoffStack[T]) Empty() bool {
	switch b := s.backing.(type) {
	case emptier:
		return b.Empty()
	case lener:
		return b.Len() == 0
	default:
		return false
	}
}

// Stats returns a snapshot of the counters. It is all zeros unless the stack was
// created with statistics enabled.
func (s *EliminationBackoffStack[T]) Stats() Stats {
	return s.counters.snapshot()
}

// Events drains the recorded rounds in the order they were recorded. It returns
// nil unless event recording is enabled.
func (s *EliminationBackoffStack[T]) Events() []Event[T] {
	return s.events.drain()
}

func (s *EliminationBackoffStack[T]) Config() Config {
	return s.config
}

func (s *EliminationBackoffStack[T]) logDebug() *zerolog.Event {
	return s.logger.Debug().Bool("blocking", s.config.Blocking)
}

func (s *EliminationBackoffStack[T]) logTrace() *zerolog.Event {
	return s.logger.Trace().Bool("blocking", s.config.Blocking)
}
