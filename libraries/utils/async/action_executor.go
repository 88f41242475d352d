// Copyright 2025 Dolthub, Inc.
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

package async

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// Action is the function called by an ActionExecutor on each given value.
type Action[T any] func(ctx context.Context, val T) error

// ActionExecutor runs an action over a queue of values with bounded
// concurrency and fail-fast semantics: once any action returns an error, no
// queued value starts, although actions already in flight run to completion.
// Goroutines are spun up as values arrive, up to the concurrency limit, and
// exit when the queue drains.
type ActionExecutor[T any] struct {
	action      Action[T]
	ctx         context.Context
	concurrency uint32
	err         error
	wg          sync.WaitGroup
	queue       *list.List
	running     uint32
	mu          sync.Mutex
}

// NewActionExecutor returns an ActionExecutor that will run the given action
// on each appended value, using up to concurrency goroutines. A concurrency
// of 0 is treated as 1. Panics on a nil action.
func NewActionExecutor[T any](ctx context.Context, action Action[T], concurrency uint32) *ActionExecutor[T] {
	if action == nil {
		panic("action cannot be nil")
	}
	if concurrency == 0 {
		concurrency = 1
	}
	return &ActionExecutor[T]{
		action:      action,
		ctx:         ctx,
		concurrency: concurrency,
		queue:       list.New(),
	}
}

// Execute adds the value to the end of the queue. If any action encountered
// an error before this call, the value is dropped and this returns
// immediately.
func (ae *ActionExecutor[T]) Execute(val T) {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	if ae.err != nil {
		return
	}

	ae.wg.Add(1)
	ae.queue.PushBack(val)

	if ae.running < ae.concurrency {
		ae.running++
		go ae.work()
	}
}

// WaitForEmpty waits until the queue is empty and all in-flight actions have
// returned, then reports the first error any action encountered.
func (ae *ActionExecutor[T]) WaitForEmpty() error {
	ae.wg.Wait()

	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.err
}

func (ae *ActionExecutor[T]) work() {
	for {
		ae.mu.Lock()
		element := ae.queue.Front()
		if element == nil {
			ae.running--
			ae.mu.Unlock()
			return
		}
		ae.queue.Remove(element)
		failed := ae.err != nil
		ae.mu.Unlock()

		if !failed {
			var err error
			func() {
				// Present a panicking action as an error instead of
				// taking down the process.
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("panic in ActionExecutor:\n%v", r)
					}
				}()
				err = ae.action(ae.ctx, element.Value.(T))
			}()
			if err != nil {
				ae.mu.Lock()
				if ae.err == nil {
					ae.err = err
				}
				ae.mu.Unlock()
			}
		}

		ae.wg.Done()
	}
}
