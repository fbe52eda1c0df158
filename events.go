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
	"github.com/pawelgaczynski/ebstack/pkg/queue"
)

type Op uint8

const (
	OpPush Op = iota
	OpPop
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	default:
		return "unknown"
	}
}

// Outcome describes how a single round of an operation ended.
type Outcome uint8

const (
	// OutcomeStack means the operation completed on the backing stack.
	OutcomeStack Outcome = iota
	// OutcomeEliminated means the operation was paired with an opposing one.
	OutcomeEliminated
	// OutcomeTimeout means no partner arrived before the exchanger wait elapsed.
	OutcomeTimeout
	// OutcomeCollision means the partner was an operation of the same kind.
	OutcomeCollision
	// OutcomeEmpty means a non-blocking pop gave up without a value.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStack:
		return "stack"
	case OutcomeEliminated:
		return "eliminated"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCollision:
		return "collision"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Event is a single recorded round. Value is set for pushes and for pops that
// obtained a value.
type Event[T any] struct {
	Value   T
	Op      Op
	Outcome Outcome
	Range   int
}

type eventRecorder[T any] struct {
	queue queue.LockFreeQueue[Event[T]]
}

func newEventRecorder[T any](enabled bool) *eventRecorder[T] {
	if !enabled {
		return &eventRecorder[T]{}
	}

	return &eventRecorder[T]{
		queue: queue.NewQueue[Event[T]](),
	}
}

func (r *eventRecorder[T]) record(op Op, outcome Outcome, rng int, value T) {
	if r.queue == nil {
		return
	}

	r.queue.Enqueue(Event[T]{
		Value:   value,
		Op:      op,
		Outcome: outcome,
		Range:   rng,
	})
}

func (r *eventRecorder[T]) drain() []Event[T] {
	if r.queue == nil {
		return nil
	}

	events := make([]Event[T], 0, r.queue.Size())

	for !r.queue.IsEmpty() {
		event, ok := r.queue.Dequeue()
		if !ok {
			break
		}

		events = append(events, event)
	}

	return events
}
