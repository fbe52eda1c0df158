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

package elimination

// RangePolicy adapts how many elimination slots a goroutine searches. It is not
// safe for concurrent use; every instance must be owned by one goroutine at a time.
type RangePolicy struct {
	maxRange     int
	currentRange int
}

func NewRangePolicy(maxRange int) *RangePolicy {
	if maxRange < 1 {
		maxRange = 1
	}

	return &RangePolicy{
		maxRange:     maxRange,
		currentRange: 1,
	}
}

// RecordEliminationSuccess widens the range by one, up to the maximum.
func (p *RangePolicy) RecordEliminationSuccess() {
	if p.currentRange < p.maxRange {
		p.currentRange++
	}
}

// RecordEliminationTimeout narrows the range by one, down to a single slot.
func (p *RangePolicy) RecordEliminationTimeout() {
	if p.currentRange > 1 {
		p.currentRange--
	}
}

func (p *RangePolicy) Range() int {
	return p.currentRange
}

func (p *RangePolicy) MaxRange() int {
	return p.maxRange
}
