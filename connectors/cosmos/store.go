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

// Package cosmos stores conversation history in Cosmos DB through its
// Mongo wire API. One document per conversation, messages embedded.
package cosmos

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/base"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultListLimit      = 50
)

// Message is a single chat message within a conversation.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Conversation is the stored document.
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Messages  []Message `bson:"messages" json:"messages"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Summary is the listing projection: no message bodies.
type Summary struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ConversationStore provides conversation persistence.
type ConversationStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *log.Logger
}

// NewConversationStore connects to the Cosmos Mongo endpoint and pings it.
func NewConversationStore(ctx context.Context, uri, database, collection string) (*ConversationStore, error) {
	if uri == "" {
		return nil, base.NewConnectorError("cosmos", "New", "connection URI is required", nil)
	}
	if database == "" || collection == "" {
		return nil, base.NewConnectorError("cosmos", "New", "database and collection names are required", nil)
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(defaultConnectTimeout).
		SetAppName("contentgen-orchestrator").
		// Cosmos DB's Mongo API does not support retryable writes.
		SetRetryWrites(false)

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, base.NewConnectorError("cosmos", "New", "failed to connect", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, base.NewConnectorError("cosmos", "New", "failed to ping", err)
	}

	return &ConversationStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: log.New(os.Stdout, "[COSMOS] ", log.LstdFlags),
	}, nil
}

// Close disconnects the underlying client.
func (s *ConversationStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return base.NewConnectorError("cosmos", "Close", "failed to disconnect", err)
	}
	return nil
}

// AddMessage appends a message, creating the conversation document on
// first write.
func (s *ConversationStore) AddMessage(ctx context.Context, conversationID, userID string, msg Message) error {
	if conversationID == "" {
		return base.NewConnectorError("cosmos", "AddMessage", "conversation ID is required", nil)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	now := time.Now().UTC()
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"user_id":    userID,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"title":      "",
			"created_at": now,
		},
	}

	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": conversationID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return base.NewConnectorError("cosmos", "AddMessage", "upsert failed", err)
	}
	return nil
}

// GetConversation loads one conversation. Returns (nil, nil) when it does
// not exist; absence is not an error for callers building context blocks.
func (s *ConversationStore) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, base.NewConnectorError("cosmos", "GetConversation", "find failed", err)
	}
	return &conv, nil
}

// ListConversations returns summaries for a user, most recent first.
func (s *ConversationStore) ListConversations(ctx context.Context, userID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "title": 1, "updated_at": 1}).
		SetSort(bson.M{"updated_at": -1}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, base.NewConnectorError("cosmos", "ListConversations", "find failed", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var summaries []Summary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, base.NewConnectorError("cosmos", "ListConversations", "cursor decode failed", err)
	}
	return summaries, nil
}

// UpdateTitle sets the conversation title.
func (s *ConversationStore) UpdateTitle(ctx context.Context, conversationID, title string) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"title": title, "updated_at": time.Now().UTC()}})
	if err != nil {
		return base.NewConnectorError("cosmos", "UpdateTitle", "update failed", err)
	}
	if result.MatchedCount == 0 {
		return base.NewConnectorError("cosmos", "UpdateTitle", "conversation not found", nil)
	}
	return nil
}

// DeleteConversation removes a conversation document.
func (s *ConversationStore) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": conversationID})
	if err != nil {
		return base.NewConnectorError("cosmos", "DeleteConversation", "delete failed", err)
	}
	return nil
}
