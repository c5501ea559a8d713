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

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTitleFromModel(t *testing.T) {
	client := &scriptedClient{replies: []string{"Spring Paint Campaign"}}
	o := NewContentOrchestrator(client)

	title := o.GenerateTitle(context.Background(), "user: I want to launch a paint campaign")
	assert.Equal(t, "Spring Paint Campaign", title)
}

func TestGenerateTitleSanitizesReply(t *testing.T) {
	client := &scriptedClient{replies: []string{`"Spring Paint Campaign Launch Plan!"`}}
	o := NewContentOrchestrator(client)

	title := o.GenerateTitle(context.Background(), "some conversation")
	assert.Equal(t, "Spring Paint Campaign Launch", title)
	assert.NotContains(t, title, `"`)
}

func TestGenerateTitleFallbackOnModelFailure(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model down")}}
	o := NewContentOrchestrator(client)

	title := o.GenerateTitle(context.Background(), "Launch a sneaker campaign for spring runners")
	assert.Equal(t, "Launch a sneaker campaign", title)
}

func TestGenerateTitleFallbackDefault(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model down")}}
	o := NewContentOrchestrator(client)

	title := o.GenerateTitle(context.Background(), "   \n  ")
	assert.Equal(t, defaultConversationTitle, title)
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Four Word Title Here", sanitizeTitle("Four Word Title Here Extra Words"))
	assert.Equal(t, "Holiday Promo", sanitizeTitle(`"Holiday Promo."`))
	assert.Equal(t, "", sanitizeTitle("!!! ..."))
}
