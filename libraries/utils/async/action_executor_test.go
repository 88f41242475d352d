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
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRunsAll(t *testing.T) {
	var count int64
	ae := NewActionExecutor(context.Background(), func(ctx context.Context, val int) error {
		atomic.AddInt64(&count, int64(val))
		return nil
	}, 4)

	for i := 1; i <= 100; i++ {
		ae.Execute(i)
	}
	require.NoError(t, ae.WaitForEmpty())
	assert.Equal(t, int64(5050), count)
}

func TestExecutorFailFast(t *testing.T) {
	failure := errors.New("unit 3 failed")
	var started int64

	ae := NewActionExecutor(context.Background(), func(ctx context.Context, val int) error {
		atomic.AddInt64(&started, 1)
		if val == 3 {
			return failure
		}
		return nil
	}, 1)

	for i := 0; i < 50; i++ {
		ae.Execute(i)
	}
	err := ae.WaitForEmpty()
	require.Error(t, err)
	assert.Equal(t, failure, err)

	// With a single worker, nothing past the failing unit starts.
	assert.Equal(t, int64(4), started)
}

func TestExecutorRecoversPanics(t *testing.T) {
	ae := NewActionExecutor(context.Background(), func(ctx context.Context, val string) error {
		panic(val)
	}, 2)

	ae.Execute("boom")
	err := ae.WaitForEmpty()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecutorZeroConcurrency(t *testing.T) {
	ran := false
	ae := NewActionExecutor(context.Background(), func(ctx context.Context, val struct{}) error {
		ran = true
		return nil
	}, 0)
	ae.Execute(struct{}{})
	require.NoError(t, ae.WaitForEmpty())
	assert.True(t, ran)
}
