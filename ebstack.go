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

// Package ebstack implements an elimination back-off stack: a lock-free LIFO
// stack where a push and a pop that meet while the shared stack is contended
// hand the value over directly through a small array of exchangers, without
// touching the shared stack at all.
//
// Every goroutine adapts how many exchangers it searches: successful
// eliminations widen the range, timeouts narrow it.
//
// Push never fails. Pop either gives up after one failed round (non-blocking
// mode) or retries until a value is available (blocking mode).
package ebstack
