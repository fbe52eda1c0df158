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

package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExchangeTimeout occurs when no partner arrived at an exchanger before the deadline.
	ErrExchangeTimeout = errors.New("exchange timed out")
	// ErrInvalidCapacity occurs when an elimination array is configured with less than one slot.
	ErrInvalidCapacity = errors.New("invalid exchanger capacity")
	// ErrInvalidTimeDuration occurs when specified time duration is not valid.
	ErrInvalidTimeDuration = errors.New("invalid time duration")
	// ErrNilBackingStack occurs when the stack is created without an underlying stack.
	ErrNilBackingStack = errors.New("backing stack is nil")
)

func ErrorInvalidCapacity(capacity int) error {
	return fmt.Errorf("%w, capacity: %d", ErrInvalidCapacity, capacity)
}

func ErrorInvalidTimeDuration(name string, duration time.Duration) error {
	return fmt.Errorf("%w, %s: %s", ErrInvalidTimeDuration, name, duration)
}
