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
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/config"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/azureblob"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/cosmos"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/connectors/taskcache"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/imagegen"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/llm"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/llm/azure"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/shared/logger"
)

// Service components, wired once at startup. Cosmos, blob, and the task
// registry are optional; handlers degrade without them.
var (
	settings     *config.Settings
	coordinator  *ContentOrchestrator
	pipeline     *ContentPipeline
	convStore    *cosmos.ConversationStore
	imageStore   *azureblob.ImageStore
	taskRegistry *taskcache.Registry
	httpLog      = logger.New("http")
	startTime    time.Time

	totalRequests   int64
	blockedRequests int64
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgen_orchestrator_requests_total",
			Help: "Total number of requests processed by the orchestrator",
		},
		[]string{"endpoint", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentgen_orchestrator_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"endpoint"},
	)
	promBlockedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contentgen_orchestrator_blocked_requests_total",
			Help: "Total number of requests refused by the safety filter",
		},
	)
	promAgentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgen_orchestrator_agent_events_total",
			Help: "Total number of agent events streamed to clients",
		},
		[]string{"type"},
	)
	promImagesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgen_orchestrator_image_generations_total",
			Help: "Total number of image generation attempts",
		},
		[]string{"status"},
	)
	promLLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgen_orchestrator_llm_calls_total",
			Help: "Total number of chat model API calls",
		},
		[]string{"client", "status"},
	)
)

func init() {
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promBlockedRequests)
	prometheus.MustRegister(promAgentEvents)
	prometheus.MustRegister(promImagesGenerated)
	prometheus.MustRegister(promLLMCalls)
}

// meteredChatClient counts every completion call against the llm_calls
// metric without the coordinator knowing about Prometheus.
type meteredChatClient struct {
	inner llm.Client
}

func (m meteredChatClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	resp, err := m.inner.Complete(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	promLLMCalls.WithLabelValues(m.inner.Name(), status).Inc()
	return resp, err
}

func (m meteredChatClient) Name() string { return m.inner.Name() }

// Run boots the orchestrator service and blocks serving HTTP.
func Run() {
	log.Println("Starting content generation orchestrator...")
	startTime = time.Now()

	initializeComponents()

	r := mux.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health and metrics
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/metrics", simpleMetricsHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	// Conversational workflow (SSE streams)
	r.HandleFunc("/api/v1/chat", chatHandler).Methods("POST")
	r.HandleFunc("/api/v1/chat/response", chatResponseHandler).Methods("POST")

	// Brief, products, and one-shot generation
	r.HandleFunc("/api/v1/brief/parse", parseBriefHandler).Methods("POST")
	r.HandleFunc("/api/v1/products/select", selectProductsHandler).Methods("POST")
	r.HandleFunc("/api/v1/generate", generateContentHandler).Methods("POST")
	r.HandleFunc("/api/v1/images/regenerate", regenerateImageHandler).Methods("POST")
	r.HandleFunc("/api/v1/tasks/{id}", taskStatusHandler).Methods("GET")

	// Conversation history
	r.HandleFunc("/api/v1/conversations", listConversationsHandler).Methods("GET")
	r.HandleFunc("/api/v1/conversations/{id}", getConversationHandler).Methods("GET")
	r.HandleFunc("/api/v1/conversations/{id}", deleteConversationHandler).Methods("DELETE")

	handler := c.Handler(r)
	log.Printf("Orchestrator listening on :%s", settings.Port)
	log.Fatal(http.ListenAndServe(":"+settings.Port, handler))
}

func initializeComponents() {
	var err error
	settings, err = config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	chatCfg := azure.Config{
		Endpoint:   settings.AzureOpenAI.Endpoint,
		APIKey:     settings.AzureOpenAI.APIKey,
		Deployment: settings.ChatDeployment(),
		APIVersion: settings.AzureOpenAI.APIVersion,
	}
	if settings.AzureOpenAI.UseFoundry {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			log.Fatalf("Failed to create Azure credential: %v", err)
		}
		chatCfg.Credential = cred
	}
	chatClient, err := azure.NewClient(chatCfg)
	if err != nil {
		log.Fatalf("Failed to create Azure OpenAI client: %v", err)
	}

	coordinator = NewContentOrchestrator(meteredChatClient{inner: chatClient})

	var imageRouter *imagegen.Router
	if settings.Image.Endpoint != "" && settings.Image.Deployment != "" {
		imageRouter, err = imagegen.NewRouter(imagegen.Config{
			Family:     imagegen.Family(settings.Image.Family),
			Endpoint:   settings.Image.Endpoint,
			APIKey:     settings.Image.APIKey,
			Deployment: settings.Image.Deployment,
			APIVersion: settings.Image.APIVersion,
		})
		if err != nil {
			log.Fatalf("Failed to create image router: %v", err)
		}
		log.Printf("Image generation enabled (family=%s)", settings.Image.Family)
	} else {
		log.Println("Image generation disabled: no image endpoint configured")
	}

	switch {
	case settings.Blob.ConnectionString != "":
		imageStore, err = azureblob.NewImageStoreFromConnectionString(settings.Blob.ConnectionString, settings.Blob.Container)
	case settings.Blob.AccountName != "":
		imageStore, err = azureblob.NewImageStore(settings.Blob.AccountName, settings.Blob.Container)
	}
	if err != nil {
		log.Printf("WARNING: blob storage unavailable, images will be returned inline: %v", err)
		imageStore = nil
	}
	if imageStore != nil {
		if err := imageStore.EnsureContainer(context.Background()); err != nil {
			log.Printf("WARNING: could not ensure blob container: %v", err)
		}
	}

	// interface-typed nils must stay nil, not wrap a nil pointer
	var gen imageGenerator
	if imageRouter != nil {
		gen = imageRouter
	}
	var saver imageSaver
	if imageStore != nil {
		saver = imageStore
	}
	pipeline = NewContentPipeline(coordinator, gen, saver)

	if settings.Cosmos.URI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		convStore, err = cosmos.NewConversationStore(ctx, settings.Cosmos.URI, settings.Cosmos.Database, settings.Cosmos.Collection)
		cancel()
		if err != nil {
			log.Printf("WARNING: conversation store unavailable, history disabled: %v", err)
			convStore = nil
		}
	}

	if settings.TaskCache.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		taskRegistry, err = taskcache.NewRegistry(ctx, settings.TaskCache.Addr, settings.TaskCache.Password, settings.TaskCache.DB, settings.TaskCache.TTL)
		cancel()
		if err != nil {
			log.Printf("WARNING: task registry unavailable, image regeneration will run synchronously: %v", err)
			taskRegistry = nil
		}
	}
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	RequestID      string `json:"request_id"`
}

func chatHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	atomic.AddInt64(&totalRequests, 1)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		promRequestsTotal.WithLabelValues("chat", "bad_request").Inc()
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.New().String()
	}

	history := loadHistory(r.Context(), req.ConversationID)
	persistMessage(r.Context(), req.ConversationID, req.UserID, "user", req.Message)

	events := coordinator.ProcessMessage(r.Context(), req.Message, req.ConversationID, history)
	streamEvents(w, r, req, events)

	promRequestsTotal.WithLabelValues("chat", "ok").Inc()
	promRequestDuration.WithLabelValues("chat").Observe(float64(time.Since(start).Milliseconds()))
}

func chatResponseHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	atomic.AddInt64(&totalRequests, 1)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID == "" {
		writeJSONError(w, http.StatusBadRequest, "request_id and message are required")
		promRequestsTotal.WithLabelValues("chat_response", "bad_request").Inc()
		return
	}

	events, err := coordinator.SendUserResponse(r.Context(), req.RequestID, req.Message)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		promRequestsTotal.WithLabelValues("chat_response", "not_found").Inc()
		return
	}

	persistMessage(r.Context(), req.ConversationID, req.UserID, "user", req.Message)
	streamEvents(w, r, req, events)

	promRequestsTotal.WithLabelValues("chat_response", "ok").Inc()
	promRequestDuration.WithLabelValues("chat_response").Observe(float64(time.Since(start).Milliseconds()))
}

// streamEvents relays the event channel as server-sent events and
// persists the final assistant reply.
func streamEvents(w http.ResponseWriter, r *http.Request, req chatRequest, events <-chan AgentEvent) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Conversation-ID", req.ConversationID)

	flusher, _ := w.(http.Flusher)

	var finalContent string
	for ev := range events {
		promAgentEvents.WithLabelValues(string(ev.Type)).Inc()
		if ev.IsFinal && ev.Type == EventMessage {
			finalContent = ev.Content
			if ev.Content == HarmfulContentResponse {
				atomic.AddInt64(&blockedRequests, 1)
				promBlockedRequests.Inc()
			}
		}

		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		if flusher != nil {
			flusher.Flush()
		}
	}

	if finalContent != "" {
		persistMessage(r.Context(), req.ConversationID, req.UserID, "assistant", finalContent)
		maybeGenerateTitle(r.Context(), req.ConversationID, req.Message, finalContent)
	}
}

func loadHistory(ctx context.Context, conversationID string) []llm.Message {
	if convStore == nil {
		return nil
	}
	conv, err := convStore.GetConversation(ctx, conversationID)
	if err != nil {
		httpLog.ErrorWithErr(conversationID, "", "failed to load history", err, nil)
		return nil
	}
	if conv == nil {
		return nil
	}
	history := make([]llm.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return history
}

func persistMessage(ctx context.Context, conversationID, userID, role, content string) {
	if convStore == nil || conversationID == "" {
		return
	}
	msg := cosmos.Message{ID: uuid.New().String(), Role: role, Content: content}
	if err := convStore.AddMessage(ctx, conversationID, userID, msg); err != nil {
		httpLog.ErrorWithErr(conversationID, "", "failed to persist message", err,
			map[string]interface{}{"role": role})
	}
}

// maybeGenerateTitle titles a conversation after its first exchange.
func maybeGenerateTitle(ctx context.Context, conversationID, userMessage, reply string) {
	if convStore == nil {
		return
	}
	conv, err := convStore.GetConversation(ctx, conversationID)
	if err != nil || conv == nil || conv.Title != "" {
		return
	}
	title := coordinator.GenerateTitle(ctx, "user: "+userMessage+"\nassistant: "+reply)
	if err := convStore.UpdateTitle(ctx, conversationID, title); err != nil {
		httpLog.ErrorWithErr(conversationID, "", "failed to store title", err, nil)
	}
}

type parseBriefRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

func parseBriefHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	atomic.AddInt64(&totalRequests, 1)

	var req parseBriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := req.Text
	if text == "" && req.ConversationID != "" {
		for _, m := range loadHistory(r.Context(), req.ConversationID) {
			text += m.Role + ": " + m.Content + "\n"
		}
	}
	if strings.TrimSpace(text) == "" {
		writeJSONError(w, http.StatusBadRequest, "text or conversation_id with history is required")
		return
	}

	ex, err := coordinator.ParseBrief(r.Context(), text, req.ConversationID)
	if err == ErrContentBlocked {
		atomic.AddInt64(&blockedRequests, 1)
		promBlockedRequests.Inc()
		promRequestsTotal.WithLabelValues("brief_parse", "blocked").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rai_blocked": true,
			"message":     HarmfulContentResponse,
		})
		return
	}
	if err != nil {
		promRequestsTotal.WithLabelValues("brief_parse", "error").Inc()
		writeJSONError(w, http.StatusBadGateway, "brief extraction failed")
		return
	}

	promRequestsTotal.WithLabelValues("brief_parse", "ok").Inc()
	promRequestDuration.WithLabelValues("brief_parse").Observe(float64(time.Since(start).Milliseconds()))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"brief":              ex.Brief,
		"is_complete":        ex.Complete,
		"missing_fields":     ex.MissingFields,
		"clarifying_message": ex.ClarifyingMessage,
	})
}

type selectProductsRequest struct {
	ConversationID string    `json:"conversation_id"`
	Request        string    `json:"request"`
	Current        []Product `json:"current"`
	Catalog        []Product `json:"catalog"`
}

func selectProductsHandler(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&totalRequests, 1)

	var req selectProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Request) == "" {
		writeJSONError(w, http.StatusBadRequest, "request is required")
		return
	}

	sel, err := coordinator.SelectProducts(r.Context(), req.Request, req.Current, req.Catalog, req.ConversationID)
	if err == ErrContentBlocked {
		atomic.AddInt64(&blockedRequests, 1)
		promBlockedRequests.Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rai_blocked": true,
			"message":     HarmfulContentResponse,
		})
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "product selection failed")
		return
	}

	promRequestsTotal.WithLabelValues("products_select", "ok").Inc()
	writeJSON(w, http.StatusOK, sel)
}

type generateContentRequest struct {
	ConversationID string        `json:"conversation_id"`
	Brief          CreativeBrief `json:"brief"`
	Products       []Product     `json:"products"`
	WantImage      bool          `json:"want_image"`
}

func generateContentHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	atomic.AddInt64(&totalRequests, 1)

	var req generateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Brief.IsEmpty() {
		writeJSONError(w, http.StatusBadRequest, "brief is required")
		return
	}

	result := pipeline.GenerateContent(r.Context(), req.Brief, req.Products, req.WantImage, req.ConversationID)

	status := "ok"
	if result.RAIBlocked {
		status = "blocked"
		atomic.AddInt64(&blockedRequests, 1)
		promBlockedRequests.Inc()
	} else if result.Error != "" {
		status = "error"
	}
	if req.WantImage {
		if result.ImageError != "" {
			promImagesGenerated.WithLabelValues("failed").Inc()
		} else if result.ImageBlobURL != "" || result.ImageBase64 != "" {
			promImagesGenerated.WithLabelValues("ok").Inc()
		}
	}

	promRequestsTotal.WithLabelValues("generate", status).Inc()
	promRequestDuration.WithLabelValues("generate").Observe(float64(time.Since(start).Milliseconds()))
	writeJSON(w, http.StatusOK, result)
}

type regenerateImageRequest struct {
	ConversationID string        `json:"conversation_id"`
	Brief          CreativeBrief `json:"brief"`
	CurrentPrompt  string        `json:"current_prompt"`
	Modification   string        `json:"modification"`
	Products       []Product     `json:"products"`
}

func regenerateImageHandler(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&totalRequests, 1)

	var req regenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentPrompt == "" {
		writeJSONError(w, http.StatusBadRequest, "current_prompt and modification are required")
		return
	}

	// With a task registry the regeneration runs in the background and
	// the client polls; without one it runs inline.
	if taskRegistry != nil {
		taskID := uuid.New().String()
		task := taskcache.Task{ID: taskID, ConversationID: req.ConversationID, Status: taskcache.StatusPending}
		if err := taskRegistry.Put(r.Context(), task); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "could not register task")
			return
		}

		go func(req regenerateImageRequest, taskID string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			_ = taskRegistry.SetStatus(ctx, taskID, taskcache.StatusRunning, "")
			result := pipeline.RegenerateImage(ctx, req.Brief, req.CurrentPrompt, req.Modification, req.Products, req.ConversationID)
			switch {
			case result.RAIBlocked:
				promBlockedRequests.Inc()
				_ = taskRegistry.SetStatus(ctx, taskID, taskcache.StatusFailed, HarmfulContentResponse)
			case result.ImageError != "":
				promImagesGenerated.WithLabelValues("failed").Inc()
				_ = taskRegistry.SetStatus(ctx, taskID, taskcache.StatusFailed, result.ImageError)
			default:
				promImagesGenerated.WithLabelValues("ok").Inc()
				// ImageBase64 is the inline fallback when blob storage
				// was unavailable; keep it so the poll can return it.
				_ = taskRegistry.SetCompleted(ctx, taskID, result.ImageBlobURL, result.ImageBase64)
			}
		}(req, taskID)

		promRequestsTotal.WithLabelValues("images_regenerate", "accepted").Inc()
		writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
		return
	}

	result := pipeline.RegenerateImage(r.Context(), req.Brief, req.CurrentPrompt, req.Modification, req.Products, req.ConversationID)
	if result.RAIBlocked {
		atomic.AddInt64(&blockedRequests, 1)
		promBlockedRequests.Inc()
	}
	if result.ImageError != "" {
		promImagesGenerated.WithLabelValues("failed").Inc()
	} else if !result.RAIBlocked {
		promImagesGenerated.WithLabelValues("ok").Inc()
	}

	promRequestsTotal.WithLabelValues("images_regenerate", "ok").Inc()
	writeJSON(w, http.StatusOK, result)
}

func taskStatusHandler(w http.ResponseWriter, r *http.Request) {
	if taskRegistry == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "task registry not configured")
		return
	}

	taskID := mux.Vars(r)["id"]
	task, ok, err := taskRegistry.Get(r.Context(), taskID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "task lookup failed")
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func listConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if convStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "conversation store not configured")
		return
	}

	userID := r.URL.Query().Get("user_id")
	summaries, err := convStore.ListConversations(r.Context(), userID, 0)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if summaries == nil {
		summaries = []cosmos.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func getConversationHandler(w http.ResponseWriter, r *http.Request) {
	if convStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "conversation store not configured")
		return
	}

	conv, err := convStore.GetConversation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if conv == nil {
		writeJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func deleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	if convStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "conversation store not configured")
		return
	}

	if err := convStore.DeleteConversation(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	components := map[string]string{
		"chat":          "ok",
		"image_router":  boolStatus(pipeline != nil && pipeline.images != nil),
		"blob_storage":  boolStatus(imageStore != nil),
		"conversations": boolStatus(convStore != nil),
		"task_registry": boolStatus(taskRegistry != nil),
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"components": components,
	})
}

func simpleMetricsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds":   int64(time.Since(startTime).Seconds()),
		"total_requests":   atomic.LoadInt64(&totalRequests),
		"blocked_requests": atomic.LoadInt64(&blockedRequests),
	})
}

func boolStatus(enabled bool) string {
	if enabled {
		return "ok"
	}
	return "disabled"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
