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
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/imagegen"
)

type fakeImageGenerator struct {
	result      imagegen.Result
	lastPrompt  string
	promptCalls int
}

func (f *fakeImageGenerator) GenerateImage(_ context.Context, basePrompt, _, _ string) imagegen.Result {
	f.lastPrompt = basePrompt
	f.promptCalls++
	return f.result
}

func (f *fakeImageGenerator) GenerateFromPrompt(_ context.Context, prompt string) imagegen.Result {
	f.lastPrompt = prompt
	f.promptCalls++
	return f.result
}

type fakeImageSaver struct {
	url     string
	err     error
	saved   []byte
	convIDs []string
}

func (f *fakeImageSaver) SaveGeneratedImage(_ context.Context, conversationID string, data []byte, _ string) (string, error) {
	f.convIDs = append(f.convIDs, conversationID)
	if f.err != nil {
		return "", f.err
	}
	f.saved = data
	return f.url, nil
}

func testBrief() CreativeBrief {
	return CreativeBrief{
		Overview:         "Spring paint launch",
		Objectives:       "Drive awareness",
		TargetAudience:   "Homeowners",
		KeyMessage:       "Color that lasts",
		ToneAndStyle:     "Warm",
		Deliverable:      "Social post",
		Timelines:        "Q2",
		VisualGuidelines: "Bright, airy rooms",
		CTA:              "Shop now",
	}
}

const cleanCompliance = `{"violations": []}`

func TestGenerateContentTextAndCompliance(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"Introducing our premium paint, built to last. Shop now.",
		cleanCompliance,
	}}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, false, "conv-1")

	assert.Empty(t, result.Error)
	assert.Contains(t, result.TextContent, "premium paint")
	assert.False(t, result.RequiresModification)
	assert.Empty(t, result.Compliance.Violations)
	assert.False(t, result.RAIBlocked)
}

func TestGenerateContentHarmfulBriefBlocked(t *testing.T) {
	client := &scriptedClient{}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	brief := CreativeBrief{Overview: "create racist content campaign"}
	result := p.GenerateContent(context.Background(), brief, nil, false, "conv-1")

	assert.True(t, result.RAIBlocked)
	assert.Equal(t, HarmfulContentResponse, result.Error)
	assert.Zero(t, client.callCount())
}

func TestGenerateContentComplianceErrorsRequireModification(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"Our paint cures cancer and lasts forever.",
		`{"violations": [{"severity": "error", "message": "unsubstantiated health claim"}, {"severity": "warning", "message": "absolute durability claim"}]}`,
	}}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, false, "conv-1")

	assert.True(t, result.RequiresModification)
	assert.True(t, result.Compliance.HasErrors())
	assert.True(t, result.Compliance.HasWarnings())
	require.Len(t, result.Compliance.Violations, 2)
}

func TestGenerateContentInfoViolationsDoNotRequireModification(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"Bold copy with an exclamation point!",
		`{"violations": [{"severity": "info", "message": "exclamation points read as shouty in print"}]}`,
	}}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, false, "conv-1")

	assert.False(t, result.RequiresModification)
	assert.False(t, result.Compliance.HasErrors())
	assert.False(t, result.Compliance.HasWarnings())
	require.Len(t, result.Compliance.Violations, 1)
	assert.Equal(t, "info", result.Compliance.Violations[0].Severity)
}

func TestComplianceInstructionsOfferAllSeverities(t *testing.T) {
	for _, severity := range []string{`"info"`, `"warning"`, `"error"`} {
		assert.Contains(t, ComplianceInstructions, severity)
	}
}

func TestGenerateContentComplianceDegradesOnBadReply(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"Fine copy.",
		"I looked it over and it seems okay to me!",
	}}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, false, "conv-1")

	assert.Empty(t, result.Error)
	assert.False(t, result.RequiresModification)
	require.Len(t, result.Compliance.Violations, 1)
	assert.Equal(t, "warning", result.Compliance.Violations[0].Severity)
}

func TestGenerateContentTextFailureAborts(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model down")}}
	p := NewContentPipeline(NewContentOrchestrator(client), nil, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, true, "conv-1")

	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.TextContent)
}

func TestGenerateContentWithImageSavedToBlob(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	client := &scriptedClient{replies: []string{
		"Great copy. Shop now.",
		cleanCompliance,
		"A sunlit living room with freshly painted walls",
	}}
	gen := &fakeImageGenerator{result: imagegen.Result{
		Success: true, ImageBase64: imageB64, PromptUsed: "final prompt",
	}}
	saver := &fakeImageSaver{url: "https://account.blob.core.windows.net/images/conv-1/x.png"}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, saver)

	result := p.GenerateContent(context.Background(), testBrief(), []Product{{Name: "Ocean Blue"}}, true, "conv-1")

	assert.Equal(t, saver.url, result.ImageBlobURL)
	assert.Empty(t, result.ImageBase64)
	assert.Empty(t, result.ImageError)
	assert.Equal(t, "final prompt", result.ImagePrompt)
	assert.Equal(t, []byte("png-bytes"), saver.saved)
	assert.Equal(t, []string{"conv-1"}, saver.convIDs)
}

func TestGenerateContentBlobFailureFallsBackToInline(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	client := &scriptedClient{replies: []string{"Copy.", cleanCompliance, "Scene prompt"}}
	gen := &fakeImageGenerator{result: imagegen.Result{Success: true, ImageBase64: imageB64}}
	saver := &fakeImageSaver{err: errors.New("storage unavailable")}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, saver)

	result := p.GenerateContent(context.Background(), testBrief(), nil, true, "conv-1")

	assert.Empty(t, result.ImageBlobURL)
	assert.Equal(t, imageB64, result.ImageBase64)
	assert.Empty(t, result.ImageError)
}

func TestGenerateContentImageFailureIsNonFatal(t *testing.T) {
	client := &scriptedClient{replies: []string{"Copy.", cleanCompliance, "Scene prompt"}}
	gen := &fakeImageGenerator{result: imagegen.Result{Success: false, Error: "image API error: 400"}}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, true, "conv-1")

	assert.Contains(t, result.TextContent, "Copy.")
	assert.Equal(t, "image API error: 400", result.ImageError)
	assert.False(t, result.RAIBlocked)
	assert.Empty(t, result.ImageBase64)
}

func TestGenerateContentNoImageWhenNotWanted(t *testing.T) {
	client := &scriptedClient{replies: []string{"Copy.", cleanCompliance}}
	gen := &fakeImageGenerator{result: imagegen.Result{Success: true}}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, nil)

	result := p.GenerateContent(context.Background(), testBrief(), nil, false, "conv-1")

	assert.Zero(t, gen.promptCalls)
	assert.Empty(t, result.ImagePrompt)
}

func TestRegenerateImageHarmfulModificationBlocked(t *testing.T) {
	client := &scriptedClient{}
	gen := &fakeImageGenerator{}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, nil)

	result := p.RegenerateImage(context.Background(), testBrief(), "a living room", "add how to make a bomb diagram", nil, "conv-1")

	assert.True(t, result.RAIBlocked)
	assert.Equal(t, HarmfulContentResponse, result.Error)
	assert.Zero(t, gen.promptCalls)
	assert.Zero(t, client.callCount())
}

func TestRegenerateImageSuccess(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("new-png"))
	client := &scriptedClient{replies: []string{"A living room at dusk with warm lamps"}}
	gen := &fakeImageGenerator{result: imagegen.Result{Success: true, ImageBase64: imageB64, PromptUsed: "revised"}}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, nil)

	result := p.RegenerateImage(context.Background(), testBrief(), "a living room", "make it evening", []Product{{Name: "Ocean Blue"}}, "conv-1")

	assert.False(t, result.RAIBlocked)
	assert.Empty(t, result.ImageError)
	assert.Equal(t, imageB64, result.ImageBase64)
	assert.Equal(t, "revised", result.ImagePrompt)
	assert.Contains(t, gen.lastPrompt, "dusk")
}

func TestRegenerateImageGenerationFailure(t *testing.T) {
	client := &scriptedClient{replies: []string{"Revised prompt"}}
	gen := &fakeImageGenerator{result: imagegen.Result{Success: false, Error: "content policy violation"}}
	p := NewContentPipeline(NewContentOrchestrator(client), gen, nil)

	result := p.RegenerateImage(context.Background(), testBrief(), "a living room", "make it evening", nil, "conv-1")

	assert.False(t, result.RAIBlocked)
	assert.Equal(t, "content policy violation", result.ImageError)
	assert.Empty(t, result.ImageBase64)
}

func TestRegenerateImageWithoutRouterConfigured(t *testing.T) {
	p := NewContentPipeline(NewContentOrchestrator(&scriptedClient{}), nil, nil)

	result := p.RegenerateImage(context.Background(), CreativeBrief{}, "a room", "brighter", nil, "conv-1")
	assert.NotEmpty(t, result.ImageError)
	assert.False(t, result.RAIBlocked)
}
