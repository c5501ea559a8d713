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

// Package taskcache tracks long-running generation tasks in Redis so the
// HTTP layer can answer status polls without holding request state in
// process memory. Records expire on their own; completed tasks need no
// cleanup pass.
package taskcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/base"
)

// Status is the lifecycle state of a generation task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is one generation task record.
type Task struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Status         Status    `json:"status"`
	Error          string    `json:"error,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	ImageBase64    string    `json:"image_base64,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Registry stores task records with a fixed TTL.
type Registry struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRegistry connects to Redis and pings it.
func NewRegistry(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Registry, error) {
	if addr == "" {
		return nil, base.NewConnectorError("taskcache", "New", "redis address is required", nil)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, base.NewConnectorError("taskcache", "New", "failed to ping Redis", err)
	}

	return &Registry{
		client: client,
		ttl:    ttl,
		logger: log.New(os.Stdout, "[TASKCACHE] ", log.LstdFlags),
	}, nil
}

// Close closes the Redis connection.
func (r *Registry) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return base.NewConnectorError("taskcache", "Close", "failed to close connection", err)
	}
	return nil
}

func taskKey(id string) string {
	return "task:" + id
}

// Put writes a task record, refreshing its TTL.
func (r *Registry) Put(ctx context.Context, task Task) error {
	if task.ID == "" {
		return base.NewConnectorError("taskcache", "Put", "task ID is required", nil)
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	data, err := json.Marshal(task)
	if err != nil {
		return base.NewConnectorError("taskcache", "Put", "failed to marshal task", err)
	}

	if err := r.client.Set(ctx, taskKey(task.ID), data, r.ttl).Err(); err != nil {
		return base.NewConnectorError("taskcache", "Put", "SET failed", err)
	}
	return nil
}

// Get loads a task record. The bool reports whether it exists; expired
// and missing records are indistinguishable by design.
func (r *Registry) Get(ctx context.Context, id string) (*Task, bool, error) {
	data, err := r.client.Get(ctx, taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, base.NewConnectorError("taskcache", "Get", "GET failed", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, false, base.NewConnectorError("taskcache", "Get", "failed to unmarshal task", err)
	}
	return &task, true, nil
}

// SetStatus transitions a task's status, recording an error message for
// failed tasks and an image URL for completed ones.
func (r *Registry) SetStatus(ctx context.Context, id string, status Status, detail string) error {
	task, ok, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return base.NewConnectorError("taskcache", "SetStatus", fmt.Sprintf("task %s not found", id), nil)
	}

	task.Status = status
	switch status {
	case StatusFailed:
		task.Error = detail
	case StatusCompleted:
		task.ImageURL = detail
	}

	return r.Put(ctx, *task)
}

// SetCompleted marks a task completed with its image result. The URL is
// empty when blob storage was unavailable and the image rode along
// inline; at least one of the two should be set.
func (r *Registry) SetCompleted(ctx context.Context, id, imageURL, imageBase64 string) error {
	task, ok, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return base.NewConnectorError("taskcache", "SetCompleted", fmt.Sprintf("task %s not found", id), nil)
	}

	task.Status = StatusCompleted
	task.ImageURL = imageURL
	task.ImageBase64 = imageBase64
	return r.Put(ctx, *task)
}
