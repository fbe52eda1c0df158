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

// Package elimination provides the pool of exchangers used to pair opposing
// stack operations, and the adaptive policy choosing how much of it to search.
package elimination

import (
	"math/rand/v2"
	"time"

	"github.com/pawelgaczynski/ebstack/pkg/exchanger"
)

type Array[T any] struct {
	exchangers []*exchanger.Exchanger[T]
	wait       time.Duration
}

// NewArray creates an elimination array of capacity exchangers, each visit
// waiting at most wait for a partner. Capacity lower than 1 is raised to 1.
func NewArray[T any](capacity int, wait time.Duration) *Array[T] {
	if capacity < 1 {
		capacity = 1
	}

	exchangers := make([]*exchanger.Exchanger[T], capacity)
	for i := range exchangers {
		exchangers[i] = exchanger.NewExchanger[T]()
	}

	return &Array[T]{
		exchangers: exchangers,
		wait:       wait,
	}
}

// Visit offers item on a slot picked uniformly at random from [0, rng).
// rng is clamped to [1, Capacity()]. It is a single bounded attempt.
func (a *Array[T]) Visit(item *T, rng int) (*T, error) {
	return a.exchangers[a.slotIndex(rng)].Exchange(item, a.wait)
}

func (a *Array[T]) slotIndex(rng int) int {
	switch {
	case rng <= 1:
		return 0
	case rng > len(a.exchangers):
		rng = len(a.exchangers)
	}

	return rand.IntN(rng)
}

func (a *Array[T]) Capacity() int {
	return len(a.exchangers)
}

func (a *Array[T]) Wait() time.Duration {
	return a.wait
}
