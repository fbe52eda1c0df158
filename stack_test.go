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

package ebstack_test

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pawelgaczynski/ebstack"
	ebErrors "github.com/pawelgaczynski/ebstack/pkg/errors"
	"github.com/pawelgaczynski/ebstack/pkg/stack"
	. "github.com/stretchr/testify/require"
)

const testGuardTimeout = 30 * time.Second

// contendedStack never manages to link or unlink a node, so every operation
// has to go through the elimination array.
type contendedStack[T any] struct {
	pushAttempts atomic.Int64
	popAttempts  atomic.Int64
}

func (s *contendedStack[T]) TryPush(*stack.Node[T]) bool {
	s.pushAttempts.Add(1)

	return false
}

func (s *contendedStack[T]) TryPop() *stack.Node[T] {
	s.popAttempts.Add(1)

	return nil
}

func waitGroupWithTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()

	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("goroutines did not finish within %s", timeout)
	}
}

func newContendedStack(t *testing.T, opts ...ebstack.ConfigOption) (
	*ebstack.EliminationBackoffStack[int], *contendedStack[int],
) {
	t.Helper()

	backing := &contendedStack[int]{}
	s, err := ebstack.NewWithBackingStack[int](backing, ebstack.NewConfig(opts...))
	NoError(t, err)

	return s, backing
}

func TestNewValidation(t *testing.T) {
	_, err := ebstack.New[int](0, 10*time.Millisecond, false)
	ErrorIs(t, err, ebErrors.ErrInvalidCapacity)

	_, err = ebstack.New[int](4, 0, false)
	ErrorIs(t, err, ebErrors.ErrInvalidTimeDuration)

	_, err = ebstack.NewWithBackingStack[int](nil, ebstack.NewConfig())
	ErrorIs(t, err, ebErrors.ErrNilBackingStack)
}

func TestNewPositionalArgumentsWin(t *testing.T) {
	s, err := ebstack.New[int](4, 10*time.Millisecond, true,
		ebstack.WithBlocking(false),
		ebstack.WithExchangerCapacity(16),
		ebstack.WithStatistics(true),
	)
	NoError(t, err)

	config := s.Config()
	Equal(t, 4, config.ExchangerCapacity)
	Equal(t, 10*time.Millisecond, config.ExchangerWait)
	True(t, config.Blocking)
	True(t, config.Statistics)
}

func TestSingleGoroutineLIFO(t *testing.T) {
	s, err := ebstack.New[int](4, 10*time.Millisecond, true)
	NoError(t, err)

	s.Push(1)
	s.Push(2)
	Equal(t, 2, s.Len())

	value, ok := s.Pop()
	True(t, ok)
	Equal(t, 2, value)

	value, ok = s.Pop()
	True(t, ok)
	Equal(t, 1, value)
	Equal(t, 0, s.Len())
}

func TestEmpty(t *testing.T) {
	s, err := ebstack.New[int](4, 10*time.Millisecond, true)
	NoError(t, err)
	True(t, s.Empty())

	s.Push(1)
	False(t, s.Empty())

	_, ok := s.Pop()
	True(t, ok)
	True(t, s.Empty())

	contended, _ := newContendedStack(t)
	False(t, contended.Empty())
}

func TestNonBlockingPopOnEmptyStack(t *testing.T) {
	wait := 10 * time.Millisecond
	s, err := ebstack.New[int](4, wait, false, ebstack.WithStatistics(true))
	NoError(t, err)

	start := time.Now()
	value, ok := s.Pop()
	elapsed := time.Since(start)

	False(t, ok)
	Equal(t, 0, value)
	GreaterOrEqual(t, elapsed, wait)
	Less(t, elapsed, time.Second)

	stats := s.Stats()
	Equal(t, uint64(1), stats.EmptyPops)
	Equal(t, uint64(1), stats.Timeouts)
	Equal(t, uint64(0), stats.Pops())
}

func TestBlockingPopWaitsForPush(t *testing.T) {
	s, err := ebstack.New[int](2, time.Millisecond, true)
	NoError(t, err)

	result := make(chan int, 1)

	go func() {
		value, _ := s.Pop()
		result <- value
	}()

	time.Sleep(20 * time.Millisecond)
	s.Push(5)

	select {
	case value := <-result:
		Equal(t, 5, value)
	case <-time.After(testGuardTimeout):
		t.Fatal("blocking pop did not return")
	}
}

func TestPushPopEliminateWithoutTouchingStack(t *testing.T) {
	s, backing := newContendedStack(t,
		ebstack.WithExchangerCapacity(4),
		ebstack.WithExchangerWait(10*time.Millisecond),
		ebstack.WithBlocking(false),
		ebstack.WithStatistics(true),
	)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		s.Push(7)
	}()

	var (
		value    int
		ok       bool
		deadline = time.Now().Add(testGuardTimeout)
	)

	for !ok && time.Now().Before(deadline) {
		value, ok = s.Pop()
	}

	True(t, ok)
	Equal(t, 7, value)
	waitGroupWithTimeout(t, &wg, testGuardTimeout)

	Greater(t, backing.pushAttempts.Load(), int64(0))
	Greater(t, backing.popAttempts.Load(), int64(0))

	stats := s.Stats()
	Equal(t, uint64(1), stats.EliminatedPushes)
	Equal(t, uint64(1), stats.EliminatedPops)
	Equal(t, uint64(0), stats.StackPushes)
	Equal(t, uint64(0), stats.StackPops)
	Equal(t, -1, s.Len())
}

func TestEliminationHandsOverEveryValueExactlyOnce(t *testing.T) {
	const (
		producers   = 4
		consumers   = 4
		perProducer = 200
		total       = producers * perProducer
		perConsumer = total / consumers
	)

	s, backing := newContendedStack(t,
		ebstack.WithExchangerCapacity(2),
		ebstack.WithExchangerWait(time.Millisecond),
		ebstack.WithBlocking(true),
		ebstack.WithStatistics(true),
		ebstack.WithEventRecording(true),
	)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		popped   = make([]int, 0, total)
		failures atomic.Int64
	)

	wg.Add(producers + consumers)

	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()

			for i := 0; i < perProducer; i++ {
				s.Push(p*perProducer + i)
			}
		}(p)
	}

	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()

			local := make([]int, 0, perConsumer)
			for i := 0; i < perConsumer; i++ {
				value, ok := s.Pop()
				if !ok {
					failures.Add(1)

					continue
				}
				local = append(local, value)
			}

			mu.Lock()
			popped = append(popped, local...)
			mu.Unlock()
		}()
	}

	waitGroupWithTimeout(t, &wg, testGuardTimeout)
	Equal(t, int64(0), failures.Load())

	sort.Ints(popped)
	for i := 0; i < total; i++ {
		Equal(t, i, popped[i])
	}

	stats := s.Stats()
	Equal(t, uint64(total), stats.EliminatedPushes)
	Equal(t, uint64(total), stats.EliminatedPops)
	Equal(t, uint64(0), stats.StackPushes)
	Equal(t, uint64(0), stats.EmptyPops)
	Greater(t, backing.pushAttempts.Load(), int64(0))

	var pushed, received []int
	for _, event := range s.Events() {
		if event.Outcome != ebstack.OutcomeEliminated {
			continue
		}

		GreaterOrEqual(t, event.Range, 1)
		LessOrEqual(t, event.Range, 2)

		if event.Op == ebstack.OpPush {
			pushed = append(pushed, event.Value)
		} else {
			received = append(received, event.Value)
		}
	}

	sort.Ints(pushed)
	sort.Ints(received)
	Equal(t, pushed, received)
	Len(t, pushed, total)
}

func TestNoLostValues(t *testing.T) {
	const (
		producers   = 8
		consumers   = 8
		perProducer = 2000
		total       = producers * perProducer
	)

	s, err := ebstack.New[int](4, 50*time.Microsecond, false, ebstack.WithStatistics(true))
	NoError(t, err)

	var (
		wg     sync.WaitGroup
		seen   = make([]atomic.Int32, total)
		popped atomic.Int64
	)

	wg.Add(producers + consumers)

	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()

			for i := 0; i < perProducer; i++ {
				s.Push(p*perProducer + i)
			}
		}(p)
	}

	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()

			for i := 0; i < perProducer; i++ {
				if value, ok := s.Pop(); ok {
					seen[value].Add(1)
					popped.Add(1)
				}
			}
		}()
	}

	waitGroupWithTimeout(t, &wg, testGuardTimeout)

	Equal(t, int64(total), popped.Load()+int64(s.Len()))

	for {
		value, ok := s.Pop()
		if !ok {
			break
		}
		seen[value].Add(1)
	}

	for i := range seen {
		Equal(t, int32(1), seen[i].Load(), "value %d was popped %d times", i, seen[i].Load())
	}

	stats := s.Stats()
	Equal(t, uint64(total), stats.Pushes())
	Equal(t, uint64(total), stats.Pops())
	Equal(t, 0, s.Len())
}

func TestEventsDisabled(t *testing.T) {
	s, err := ebstack.New[int](2, time.Millisecond, false)
	NoError(t, err)

	s.Push(1)
	_, _ = s.Pop()

	Nil(t, s.Events())
	Equal(t, ebstack.Stats{}, s.Stats())
}

func TestEventsRecordStackRounds(t *testing.T) {
	s, err := ebstack.New[string](2, time.Millisecond, false, ebstack.WithEventRecording(true))
	NoError(t, err)

	s.Push("a")
	value, ok := s.Pop()
	True(t, ok)
	Equal(t, "a", value)

	events := s.Events()
	Equal(t, []ebstack.Event[string]{
		{Value: "a", Op: ebstack.OpPush, Outcome: ebstack.OutcomeStack, Range: 1},
		{Value: "a", Op: ebstack.OpPop, Outcome: ebstack.OutcomeStack, Range: 1},
	}, events)

	Empty(t, s.Events())
}

func TestOpAndOutcomeNames(t *testing.T) {
	Equal(t, "push", ebstack.OpPush.String())
	Equal(t, "pop", ebstack.OpPop.String())
	Equal(t, "stack", ebstack.OutcomeStack.String())
	Equal(t, "eliminated", ebstack.OutcomeEliminated.String())
	Equal(t, "timeout", ebstack.OutcomeTimeout.String())
	Equal(t, "collision", ebstack.OutcomeCollision.String())
	Equal(t, "empty", ebstack.OutcomeEmpty.String())
}

func BenchmarkEliminationBackoffStack(b *testing.B) {
	s, err := ebstack.New[int](8, 100*time.Microsecond, false)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Push(1)
			s.Pop()
		}
	})
}
