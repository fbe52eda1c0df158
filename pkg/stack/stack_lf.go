// Copyright 2023 Paweł Gaczyński.
// Copyright 2020 The golang.design Initiative authors.
// All rights reserved. Use of this source code is governed
// by a MIT license that can be found in the LICENSE file.
//
// Original source: https://github.com/golang-design/lockfree/blob/master/stack.go

package stack

import (
	"sync/atomic"
	"unsafe"
)

// Node is a single link of the stack chain. Once pushed it is owned by the stack
// until a pop unlinks it.
type Node[T any] struct {
	value T
	next  unsafe.Pointer
}

// NewNode creates a detached node holding v.
func NewNode[T any](v T) *Node[T] {
	return &Node[T]{value: v}
}

// Value returns the value held by the node.
func (n *Node[T]) Value() T {
	return n.value
}

type Stack[T any] struct {
	top unsafe.Pointer
	len int64
}

// NewLockFreeStack creates a new lock-free stack.
func NewLockFreeStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

func getZero[T any]() T {
	var result T

	return result
}

// TryPush makes a single attempt to link node on top of the stack.
// It returns false if another goroutine changed the top in the meantime.
func (s *Stack[T]) TryPush(node *Node[T]) bool {
	top := atomic.LoadPointer(&s.top)
	atomic.StorePointer(&node.next, top)

	if atomic.CompareAndSwapPointer(&s.top, top, unsafe.Pointer(node)) {
		atomic.AddInt64(&s.len, 1)

		return true
	}

	return false
}

// TryPop makes a single attempt to unlink the top node. It returns nil if the
// stack is empty or the attempt lost a race with another goroutine.
func (s *Stack[T]) TryPop() *Node[T] {
	top := atomic.LoadPointer(&s.top)
	if top == nil {
		return nil
	}

	item := (*Node[T])(top)
	next := atomic.LoadPointer(&item.next)

	if atomic.CompareAndSwapPointer(&s.top, top, next) {
		atomic.AddInt64(&s.len, -1)

		return item
	}

	return nil
}

// Pop pops value from the top of the stack.
func (s *Stack[T]) Pop() (T, bool) {
	for {
		if atomic.LoadPointer(&s.top) == nil {
			return getZero[T](), false
		}

		if item := s.TryPop(); item != nil {
			return item.value, true
		}
	}
}

// Push pushes a value on top of the stack.
func (s *Stack[T]) Push(v T) {
	item := NewNode(v)

	for !s.TryPush(item) {
	}
}

// Len returns the number of linked nodes. Under concurrent use the result is
// only an approximation.
func (s *Stack[T]) Len() int {
	n := atomic.LoadInt64(&s.len)
	if n < 0 {
		return 0
	}

	return int(n)
}

// Empty reports whether the stack has no linked nodes.
func (s *Stack[T]) Empty() bool {
	return atomic.LoadPointer(&s.top) == nil
}
