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

// Package config loads service settings from the environment with an
// optional YAML overlay. Missing required settings are a startup error,
// not a per-request error: the service refuses to boot without them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AzureOpenAISettings configures the chat-model deployments.
type AzureOpenAISettings struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
	// UseFoundry switches authentication from api-key to Entra ID
	// bearer tokens (Azure AI Foundry endpoints).
	UseFoundry        bool   `yaml:"use_foundry"`
	FoundryDeployment string `yaml:"foundry_deployment"`
}

// ImageSettings configures the image-model deployment.
type ImageSettings struct {
	Family     string `yaml:"family"` // "dalle" or "gpt-image"
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// BlobSettings configures generated-image persistence.
type BlobSettings struct {
	ConnectionString string `yaml:"connection_string"`
	AccountName      string `yaml:"account_name"`
	Container        string `yaml:"container"`
}

// CosmosSettings configures the conversation store (Cosmos DB, Mongo API).
type CosmosSettings struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// TaskCacheSettings configures the Redis generation-task registry.
type TaskCacheSettings struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Settings is the full service configuration.
type Settings struct {
	Port        string              `yaml:"port"`
	AzureOpenAI AzureOpenAISettings `yaml:"azure_openai"`
	Image       ImageSettings       `yaml:"image"`
	Blob        BlobSettings        `yaml:"blob"`
	Cosmos      CosmosSettings      `yaml:"cosmos"`
	TaskCache   TaskCacheSettings   `yaml:"task_cache"`
}

// Load builds Settings from the environment. If CONTENTGEN_CONFIG_FILE is
// set, the named YAML file is read first and environment variables override
// its values field by field.
func Load() (*Settings, error) {
	s := &Settings{
		Port: "8081",
		AzureOpenAI: AzureOpenAISettings{
			APIVersion: "2024-08-01-preview",
		},
		Image: ImageSettings{
			Family:     "dalle",
			APIVersion: "2024-02-01",
		},
		Blob: BlobSettings{
			Container: "generated-images",
		},
		Cosmos: CosmosSettings{
			Database:   "contentgen",
			Collection: "conversations",
		},
		TaskCache: TaskCacheSettings{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
	}

	if path := os.Getenv("CONTENTGEN_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	overrideString(&s.Port, "PORT")

	overrideString(&s.AzureOpenAI.Endpoint, "AZURE_OPENAI_ENDPOINT")
	overrideString(&s.AzureOpenAI.APIKey, "AZURE_OPENAI_API_KEY")
	overrideString(&s.AzureOpenAI.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	overrideString(&s.AzureOpenAI.APIVersion, "AZURE_OPENAI_API_VERSION")
	overrideBool(&s.AzureOpenAI.UseFoundry, "USE_AI_FOUNDRY")
	overrideString(&s.AzureOpenAI.FoundryDeployment, "AI_FOUNDRY_DEPLOYMENT")

	overrideString(&s.Image.Family, "IMAGE_MODEL_FAMILY")
	overrideString(&s.Image.Endpoint, "AZURE_OPENAI_IMAGE_ENDPOINT")
	overrideString(&s.Image.APIKey, "AZURE_OPENAI_IMAGE_API_KEY")
	overrideString(&s.Image.Deployment, "AZURE_OPENAI_IMAGE_DEPLOYMENT")
	overrideString(&s.Image.APIVersion, "AZURE_OPENAI_IMAGE_API_VERSION")

	overrideString(&s.Blob.ConnectionString, "AZURE_STORAGE_CONNECTION_STRING")
	overrideString(&s.Blob.AccountName, "AZURE_STORAGE_ACCOUNT")
	overrideString(&s.Blob.Container, "AZURE_STORAGE_CONTAINER")

	overrideString(&s.Cosmos.URI, "COSMOS_URI")
	overrideString(&s.Cosmos.Database, "COSMOS_DATABASE")
	overrideString(&s.Cosmos.Collection, "COSMOS_COLLECTION")

	overrideString(&s.TaskCache.Addr, "REDIS_ADDR")
	overrideString(&s.TaskCache.Password, "REDIS_PASSWORD")
	overrideInt(&s.TaskCache.DB, "REDIS_DB")
	overrideDuration(&s.TaskCache.TTL, "TASK_TTL")

	return s, nil
}

// Validate fails fast on settings without which the service cannot function.
// Connector settings (blob, cosmos, redis) are deliberately not required:
// the orchestration core degrades to inline results without them.
func (s *Settings) Validate() error {
	if s.AzureOpenAI.Endpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if !s.AzureOpenAI.UseFoundry && s.AzureOpenAI.APIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_API_KEY is required unless USE_AI_FOUNDRY is set")
	}
	if s.AzureOpenAI.Deployment == "" {
		return fmt.Errorf("AZURE_OPENAI_DEPLOYMENT is required")
	}
	switch s.Image.Family {
	case "dalle", "gpt-image":
	default:
		return fmt.Errorf("IMAGE_MODEL_FAMILY must be %q or %q, got %q", "dalle", "gpt-image", s.Image.Family)
	}
	return nil
}

// ChatDeployment returns the deployment the chat agents should use,
// honoring the Foundry override when set.
func (s *Settings) ChatDeployment() string {
	if s.AzureOpenAI.UseFoundry && s.AzureOpenAI.FoundryDeployment != "" {
		return s.AzureOpenAI.FoundryDeployment
	}
	return s.AzureOpenAI.Deployment
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
