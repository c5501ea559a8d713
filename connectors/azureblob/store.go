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

// Package azureblob persists generated images to Azure Blob Storage and
// returns durable URLs for them. Callers treat upload failure as
// non-fatal: the orchestration layer falls back to inline base64.
package azureblob

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/base"
)

// ImageStore saves generated images under images/{conversationID}/{uuid}.png.
type ImageStore struct {
	client    *azblob.Client
	container string
	logger    *log.Logger
}

// NewImageStoreFromConnectionString creates a store using a storage account
// connection string (local development, Azurite).
func NewImageStoreFromConnectionString(connectionString, container string) (*ImageStore, error) {
	if connectionString == "" {
		return nil, base.NewConnectorError("azureblob", "New", "connection string is required", nil)
	}
	if container == "" {
		return nil, base.NewConnectorError("azureblob", "New", "container name is required", nil)
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, base.NewConnectorError("azureblob", "New", "failed to create blob client", err)
	}

	return newImageStore(client, container), nil
}

// NewImageStore creates a store authenticating with the default Azure
// credential chain (managed identity in production).
func NewImageStore(accountName, container string) (*ImageStore, error) {
	if accountName == "" {
		return nil, base.NewConnectorError("azureblob", "New", "account name is required", nil)
	}
	if container == "" {
		return nil, base.NewConnectorError("azureblob", "New", "container name is required", nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, base.NewConnectorError("azureblob", "New", "failed to create credential", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, base.NewConnectorError("azureblob", "New", "failed to create blob client", err)
	}

	return newImageStore(client, container), nil
}

func newImageStore(client *azblob.Client, container string) *ImageStore {
	return &ImageStore{
		client:    client,
		container: container,
		logger:    log.New(os.Stdout, "[BLOB] ", log.LstdFlags),
	}
}

// EnsureContainer creates the container if it does not exist yet.
func (s *ImageStore) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return base.NewConnectorError("azureblob", "EnsureContainer", "failed to create container", err)
	}
	return nil
}

// SaveGeneratedImage uploads image bytes and returns the blob URL.
func (s *ImageStore) SaveGeneratedImage(ctx context.Context, conversationID string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", base.NewConnectorError("azureblob", "SaveGeneratedImage", "image data is empty", nil)
	}
	if contentType == "" {
		contentType = "image/png"
	}

	blobName := BlobName(conversationID)

	_, err := s.client.UploadBuffer(ctx, s.container, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return "", base.NewConnectorError("azureblob", "SaveGeneratedImage", "upload failed", err)
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.URL(), "/"), s.container, blobName)
	s.logger.Printf("Saved generated image: %s (%d bytes)", blobName, len(data))
	return url, nil
}

// BlobName builds the storage path for a generated image. Conversation IDs
// come from user-facing routes, so path separators are stripped.
func BlobName(conversationID string) string {
	conversationID = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '.':
			return '-'
		}
		return r
	}, conversationID)
	if conversationID == "" {
		conversationID = "unassigned"
	}
	return fmt.Sprintf("images/%s/%s.png", conversationID, uuid.New().String())
}
