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

package sync

import (
	"sync"
	"sync/atomic"
)

// Pool hands out values cached per processor. Values are created lazily by the
// factory when the local cache is empty.
type Pool[T any] interface {
	Get() T
	Put(T)
	Created() int64
}

type pool[T any] struct {
	internalPool sync.Pool
	created      int64
}

func (p *pool[T]) Get() T {
	return p.internalPool.Get().(T)
}

func (p *pool[T]) Put(value T) {
	p.internalPool.Put(value)
}

// Created returns how many values the factory has produced so far.
func (p *pool[T]) Created() int64 {
	return atomic.LoadInt64(&p.created)
}

func NewPool[T any](factory func() T) Pool[T] {
	p := &pool[T]{}
	p.internalPool.New = func() any {
		atomic.AddInt64(&p.created, 1)

		return factory()
	}

	return p
}
