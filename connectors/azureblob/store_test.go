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

package azureblob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStoreValidation(t *testing.T) {
	_, err := NewImageStoreFromConnectionString("", "generated-images")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection string is required")

	_, err = NewImageStoreFromConnectionString("UseDevelopmentStorage=true", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container name is required")

	_, err = NewImageStore("", "generated-images")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account name is required")
}

func TestBlobName(t *testing.T) {
	name := BlobName("conv-123")
	assert.True(t, strings.HasPrefix(name, "images/conv-123/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	// Two names for the same conversation never collide.
	assert.NotEqual(t, name, BlobName("conv-123"))
}

func TestBlobNameSanitizesSeparators(t *testing.T) {
	name := BlobName("../escape/attempt")
	assert.True(t, strings.HasPrefix(name, "images/---escape-attempt/"))

	empty := BlobName("")
	assert.True(t, strings.HasPrefix(empty, "images/unassigned/"))
}
