// Copyright 2025 AxonFlow
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

package taskcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	reg, err := NewRegistry(context.Background(), mr.Addr(), "", 0, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg, mr
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(context.Background(), "", "", 0, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis address is required")
}

func TestPutAndGet(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	task := Task{ID: "task-1", ConversationID: "conv-9", Status: StatusPending}
	require.NoError(t, reg.Put(ctx, task))

	got, ok, err := reg.Get(ctx, "task-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "conv-9", got.ConversationID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	reg, _ := newTestRegistry(t)

	got, ok, err := reg.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPutRequiresID(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.Put(context.Background(), Task{Status: StatusPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task ID is required")
}

func TestSetStatusTransitions(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, Task{ID: "task-2", Status: StatusPending}))

	require.NoError(t, reg.SetStatus(ctx, "task-2", StatusRunning, ""))
	got, _, err := reg.Get(ctx, "task-2")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, reg.SetStatus(ctx, "task-2", StatusCompleted, "https://blob/img.png"))
	got, _, err = reg.Get(ctx, "task-2")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "https://blob/img.png", got.ImageURL)
}

func TestSetStatusFailedRecordsError(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, Task{ID: "task-3", Status: StatusRunning}))
	require.NoError(t, reg.SetStatus(ctx, "task-3", StatusFailed, "image API error"))

	got, _, err := reg.Get(ctx, "task-3")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "image API error", got.Error)
}

func TestSetCompletedKeepsInlineImageWhenBlobUnavailable(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, Task{ID: "task-5", Status: StatusRunning}))
	require.NoError(t, reg.SetCompleted(ctx, "task-5", "", "aGVsbG8="))

	got, _, err := reg.Get(ctx, "task-5")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Empty(t, got.ImageURL)
	assert.Equal(t, "aGVsbG8=", got.ImageBase64)
}

func TestSetCompletedWithBlobURL(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, Task{ID: "task-6", Status: StatusRunning}))
	require.NoError(t, reg.SetCompleted(ctx, "task-6", "https://blob/img.png", ""))

	got, _, err := reg.Get(ctx, "task-6")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "https://blob/img.png", got.ImageURL)
	assert.Empty(t, got.ImageBase64)
}

func TestSetStatusMissingTask(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.SetStatus(context.Background(), "ghost", StatusRunning, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRecordsExpire(t *testing.T) {
	reg, mr := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, Task{ID: "task-4", Status: StatusPending}))
	mr.FastForward(2 * time.Hour)

	_, ok, err := reg.Get(ctx, "task-4")
	require.NoError(t, err)
	assert.False(t, ok)
}
