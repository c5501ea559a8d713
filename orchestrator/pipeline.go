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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/imagegen"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/shared/logger"
)

// imageGenerator is the slice of the image router the pipeline uses.
type imageGenerator interface {
	GenerateImage(ctx context.Context, basePrompt, productDesc, sceneDesc string) imagegen.Result
	GenerateFromPrompt(ctx context.Context, prompt string) imagegen.Result
}

// imageSaver persists generated images and returns a durable URL.
type imageSaver interface {
	SaveGeneratedImage(ctx context.Context, conversationID string, data []byte, contentType string) (string, error)
}

// ContentPipeline runs the one-shot generation path: copy, compliance
// review, and optionally an image. Unlike the conversational workflow it
// returns a single result rather than an event stream.
//
// images and store may be nil: a nil images disables visuals entirely,
// a nil store falls back to inline base64 for every generated image.
type ContentPipeline struct {
	orch   *ContentOrchestrator
	images imageGenerator
	store  imageSaver
	log    *logger.Logger
}

// NewContentPipeline wires the pipeline to an orchestrator's agents.
func NewContentPipeline(orch *ContentOrchestrator, images imageGenerator, store imageSaver) *ContentPipeline {
	return &ContentPipeline{
		orch:   orch,
		images: images,
		store:  store,
		log:    logger.New("pipeline"),
	}
}

// GenerateContent produces the deliverable for a completed brief. Text
// failures abort the run; compliance and image failures degrade the
// result instead, so the user still gets their copy.
func (p *ContentPipeline) GenerateContent(ctx context.Context, brief CreativeBrief, products []Product, wantImage bool, conversationID string) ContentResult {
	summary := brief.Summary()

	if harmful, category := CheckHarmfulContent(summary); harmful {
		p.log.Warn(conversationID, "", "content generation blocked by safety filter",
			map[string]interface{}{"category": category})
		return ContentResult{RAIBlocked: true, Error: HarmfulContentResponse}
	}

	input := "Creative brief:\n" + summary
	if desc := describeProducts(products); desc != "" {
		input += "\n\nSelected products:\n" + desc
	}

	reply, err := p.orch.agents[AgentTextContent].Run(ctx, p.orch.chat, input)
	if err != nil {
		p.log.ErrorWithErr(conversationID, "", "text generation failed", err, nil)
		return ContentResult{Error: "content generation failed"}
	}

	result := ContentResult{TextContent: FilterSystemPrompt(reply)}
	result.Compliance = p.reviewCompliance(ctx, result.TextContent, conversationID)
	result.RequiresModification = result.Compliance.HasErrors()

	if wantImage && p.images != nil {
		p.attachImage(ctx, &result, brief, products, conversationID)
	}
	return result
}

// reviewCompliance runs the compliance agent over generated copy. An
// unusable reply degrades to a single warning rather than failing the
// whole generation.
func (p *ContentPipeline) reviewCompliance(ctx context.Context, content, conversationID string) ComplianceResult {
	reply, err := p.orch.agents[AgentCompliance].Run(ctx, p.orch.chat, content)
	if err == nil {
		var review ComplianceResult
		if json.Unmarshal([]byte(extractJSONObject(reply)), &review) == nil {
			if review.Violations == nil {
				review.Violations = []ComplianceViolation{}
			}
			return review
		}
		err = fmt.Errorf("unparseable compliance reply")
	}

	p.log.ErrorWithErr(conversationID, "", "compliance review degraded", err, nil)
	return ComplianceResult{Violations: []ComplianceViolation{
		{Severity: "warning", Message: "Automated compliance review was unavailable for this content."},
	}}
}

// attachImage generates the visual and persists it. Every failure lands
// in the result's image fields; the copy already generated is never
// discarded because the picture went wrong.
func (p *ContentPipeline) attachImage(ctx context.Context, result *ContentResult, brief CreativeBrief, products []Product, conversationID string) {
	promptInput := "Creative brief:\n" + brief.Summary() + "\n\nGenerated copy:\n" + result.TextContent
	basePrompt, err := p.orch.agents[AgentImageContent].Run(ctx, p.orch.chat, promptInput)
	if err != nil {
		p.log.ErrorWithErr(conversationID, "", "image prompt generation failed", err, nil)
		result.ImageError = "image prompt generation failed"
		return
	}
	basePrompt = FilterSystemPrompt(basePrompt)

	gen := p.images.GenerateImage(ctx, basePrompt, describeProducts(products), brief.VisualGuidelines)
	result.ImagePrompt = gen.PromptUsed
	if !gen.Success {
		result.ImageError = gen.Error
		return
	}
	p.storeImage(ctx, result, gen.ImageBase64, conversationID)
}

// RegenerateImage revises an image prompt per the user's modification
// and generates a replacement. Harmful modifications are refused, and
// generation failures are reported distinctly from refusals.
func (p *ContentPipeline) RegenerateImage(ctx context.Context, brief CreativeBrief, previousPrompt, modification string, products []Product, conversationID string) ContentResult {
	if harmful, category := CheckHarmfulContent(modification); harmful {
		p.log.Warn(conversationID, "", "image regeneration blocked by safety filter",
			map[string]interface{}{"category": category})
		return ContentResult{RAIBlocked: true, Error: HarmfulContentResponse}
	}
	if p.images == nil {
		return ContentResult{ImageError: "image generation is not configured"}
	}

	input := "Current image prompt:\n" + previousPrompt + "\n\nRequested change:\n" + modification
	if summary := brief.Summary(); summary != "" {
		input += "\n\nCreative brief:\n" + summary
	}
	if desc := describeProducts(products); desc != "" {
		input += "\n\nSelected products:\n" + desc
	}
	input += "\n\nWrite the revised prompt."
	revised, err := p.orch.agents[AgentImageContent].Run(ctx, p.orch.chat, input)
	if err != nil {
		p.log.ErrorWithErr(conversationID, "", "prompt revision failed", err, nil)
		return ContentResult{ImageError: "image prompt revision failed"}
	}
	revised = FilterSystemPrompt(revised)

	gen := p.images.GenerateFromPrompt(ctx, revised)
	result := ContentResult{ImagePrompt: gen.PromptUsed}
	if !gen.Success {
		result.ImageError = gen.Error
		return result
	}
	p.storeImage(ctx, &result, gen.ImageBase64, conversationID)
	return result
}

// storeImage uploads the image to blob storage, falling back to inline
// base64 when the store is absent or the upload fails.
func (p *ContentPipeline) storeImage(ctx context.Context, result *ContentResult, imageB64, conversationID string) {
	if p.store == nil {
		result.ImageBase64 = imageB64
		return
	}

	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		p.log.ErrorWithErr(conversationID, "", "generated image is not valid base64", err, nil)
		result.ImageError = "generated image could not be decoded"
		return
	}

	url, err := p.store.SaveGeneratedImage(ctx, conversationID, data, "image/png")
	if err != nil {
		p.log.ErrorWithErr(conversationID, "", "blob upload failed, returning inline image", err, nil)
		result.ImageBase64 = imageB64
		return
	}
	result.ImageBlobURL = url
}

func describeProducts(products []Product) string {
	var lines []string
	for _, pr := range products {
		line := pr.Name
		if pr.Description != "" {
			line += ": " + pr.Description
		}
		if line != "" {
			lines = append(lines, "- "+line)
		}
	}
	return strings.Join(lines, "\n")
}
