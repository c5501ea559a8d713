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

package cosmos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewConversationStoreValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewConversationStore(ctx, "", "contentgen", "conversations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection URI is required")

	_, err = NewConversationStore(ctx, "mongodb://localhost:27017", "", "conversations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database and collection names are required")

	_, err = NewConversationStore(ctx, "mongodb://localhost:27017", "contentgen", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database and collection names are required")
}

func TestConversationBSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	conv := Conversation{
		ID:     "conv-123",
		UserID: "user-1",
		Title:  "Spring sneaker launch",
		Messages: []Message{
			{ID: "m1", Role: "user", Content: "I need a campaign", CreatedAt: now},
			{ID: "m2", Role: "assistant", Content: "Tell me more", CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := bson.Marshal(conv)
	require.NoError(t, err)

	var decoded Conversation
	require.NoError(t, bson.Unmarshal(data, &decoded))

	assert.Equal(t, conv.ID, decoded.ID)
	assert.Equal(t, conv.Title, decoded.Title)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, "assistant", decoded.Messages[1].Role)
	assert.True(t, conv.Messages[0].CreatedAt.Equal(decoded.Messages[0].CreatedAt))
}

func TestSummaryProjectionFields(t *testing.T) {
	// The listing projection must decode from a document that carries
	// only the projected fields.
	doc := bson.M{
		"_id":        "conv-9",
		"title":      "Holiday campaign",
		"updated_at": time.Now().UTC(),
	}
	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	var s Summary
	require.NoError(t, bson.Unmarshal(data, &s))
	assert.Equal(t, "conv-9", s.ID)
	assert.Equal(t, "Holiday campaign", s.Title)
}
