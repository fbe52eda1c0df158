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

// Package exchanger implements a lock-free, timeout-bounded rendezvous point
// where two goroutines swap one item each.
package exchanger

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pawelgaczynski/ebstack/pkg/errors"
)

type state uint8

const (
	empty state = iota
	waiting
	busy
)

func (s state) String() string {
	switch s {
	case empty:
		return "empty"
	case waiting:
		return "waiting"
	case busy:
		return "busy"
	default:
		return "unknown"
	}
}

// slot is immutable once published. Every transition swaps the whole record,
// so the item and the state are always observed together.
type slot[T any] struct {
	item  *T
	state state
}

const spinsPerYield = 64

// Exchanger is a single rendezvous slot. A nil item means "nothing" and is a
// valid offer. Exchanger must be created with NewExchanger.
type Exchanger[T any] struct {
	slot   atomic.Pointer[slot[T]]
	vacant *slot[T]
}

func NewExchanger[T any]() *Exchanger[T] {
	e := &Exchanger[T]{
		vacant: &slot[T]{state: empty},
	}
	e.slot.Store(e.vacant)

	return e
}

// Exchange offers item and waits up to timeout for a partner. On success it
// returns the partner's item. errors.ErrExchangeTimeout is returned when no
// partner arrived in time.
//
// A first arriver whose revert at the deadline loses against a late partner
// still completes the exchange and returns the partner's item.
func (e *Exchanger[T]) Exchange(item *T, timeout time.Duration) (*T, error) {
	deadline := time.Now().Add(timeout)

	for spins := 0; ; spins++ {
		if time.Now().After(deadline) {
			return nil, errors.ErrExchangeTimeout
		}

		observed := e.slot.Load()

		switch observed.state {
		case empty:
			offer := &slot[T]{item: item, state: waiting}
			if e.slot.CompareAndSwap(observed, offer) {
				return e.await(offer, deadline)
			}

		case waiting:
			if e.slot.CompareAndSwap(observed, &slot[T]{item: item, state: busy}) {
				return observed.item, nil
			}

		case busy:
		}

		relax(spins)
	}
}

// await is run by the first arriver while its offer sits in the slot.
func (e *Exchanger[T]) await(offer *slot[T], deadline time.Time) (*T, error) {
	for spins := 0; time.Now().Before(deadline); spins++ {
		if current := e.slot.Load(); current.state == busy {
			e.slot.Store(e.vacant)

			return current.item, nil
		}

		relax(spins)
	}

	if e.slot.CompareAndSwap(offer, e.vacant) {
		return nil, errors.ErrExchangeTimeout
	}

	// Only a second arriver can replace our offer, so the slot is busy now.
	current := e.slot.Load()
	e.slot.Store(e.vacant)

	return current.item, nil
}

func relax(spins int) {
	if spins%spinsPerYield == spinsPerYield-1 {
		runtime.Gosched()
	}
}
