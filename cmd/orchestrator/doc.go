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

/*
Command orchestrator runs the content generation orchestrator service.

The orchestrator coordinates the multi-agent workflow that turns a
marketing conversation into finished deliverables: campaign copy, a
compliance review, and optionally a generated image.

# Usage

	orchestrator

# Environment Variables

Required:
  - AZURE_OPENAI_ENDPOINT: Azure OpenAI resource endpoint
  - AZURE_OPENAI_API_KEY: API key (not needed with USE_AI_FOUNDRY)
  - AZURE_OPENAI_DEPLOYMENT: chat model deployment name

Optional:
  - PORT: HTTP server port (default: 8081)
  - USE_AI_FOUNDRY: authenticate with Entra ID instead of an API key
  - AI_FOUNDRY_DEPLOYMENT: chat deployment override for Foundry
  - IMAGE_MODEL_FAMILY: "dalle" (default) or "gpt-image"
  - AZURE_OPENAI_IMAGE_ENDPOINT: image model endpoint
  - AZURE_OPENAI_IMAGE_API_KEY: image model API key
  - AZURE_OPENAI_IMAGE_DEPLOYMENT: image model deployment name
  - AZURE_STORAGE_CONNECTION_STRING: blob storage for generated images
  - AZURE_STORAGE_ACCOUNT: blob account (managed identity auth)
  - AZURE_STORAGE_CONTAINER: blob container (default: generated-images)
  - COSMOS_URI: Cosmos DB (Mongo API) URI for conversation history
  - COSMOS_DATABASE, COSMOS_COLLECTION: conversation store names
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: generation task registry
  - TASK_TTL: task record lifetime (default: 24h)
  - CONTENTGEN_CONFIG_FILE: YAML config file; env vars override it

# Example

	export AZURE_OPENAI_ENDPOINT="https://myresource.openai.azure.com"
	export AZURE_OPENAI_API_KEY="..."
	export AZURE_OPENAI_DEPLOYMENT="gpt-4o"
	./orchestrator
*/
package main
