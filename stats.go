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
	"sync/atomic"
)

// Stats is a point in time snapshot of the stack counters.
type Stats struct {
	StackPushes      uint64
	StackPops        uint64
	EliminatedPushes uint64
	EliminatedPops   uint64
	EmptyPops        uint64
	Timeouts         uint64
	Collisions       uint64
}

// Pushes returns the number of completed pushes.
func (s Stats) Pushes() uint64 {
	return s.StackPushes + s.EliminatedPushes
}

// Pops returns the number of pops that obtained a value.
func (s Stats) Pops() uint64 {
	return s.StackPops + s.EliminatedPops
}

type counters struct {
	enabled          bool
	stackPushes      atomic.Uint64
	stackPops        atomic.Uint64
	eliminatedPushes atomic.Uint64
	eliminatedPops   atomic.Uint64
	emptyPops        atomic.Uint64
	timeouts         atomic.Uint64
	collisions       atomic.Uint64
}

func (c *counters) add(op Op, outcome Outcome) {
	if !c.enabled {
		return
	}

	switch outcome {
	case OutcomeStack:
		if op == OpPush {
			c.stackPushes.Add(1)
		} else {
			c.stackPops.Add(1)
		}
	case OutcomeEliminated:
		if op == OpPush {
			c.eliminatedPushes.Add(1)
		} else {
			c.eliminatedPops.Add(1)
		}
	case OutcomeTimeout:
		c.timeouts.Add(1)
	case OutcomeCollision:
		c.collisions.Add(1)
	case OutcomeEmpty:
		c.emptyPops.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		StackPushes:      c.stackPushes.Load(),
		StackPops:        c.stackPops.Load(),
		EliminatedPushes: c.eliminatedPushes.Load(),
		EliminatedPops:   c.eliminatedPops.Load(),
		EmptyPops:        c.emptyPops.Load(),
		Timeouts:         c.timeouts.Load(),
		Collisions:       c.collisions.Load(),
	}
}
