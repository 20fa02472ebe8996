package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rcosta/eldrida-engine/pkg/chat"
)

const (
	togetherBaseURL = "https://api.together.xyz/v1"
	msgNoResponse   = "(no response)"

	DefaultTogetherMaxTokens = 512
)

// TogetherService implements LLMService against the Together AI
// OpenAI-compatible API. It also generates scene images.
type TogetherService struct {
	apiKey         string
	modelName      string
	backendModel   string
	imageModelName string
	imageDir       string
	baseURL        string
	httpClient     *http.Client
}

var _ LLMService = (*TogetherService)(nil)
var _ ImageService = (*TogetherService)(nil)

// TogetherChatRequest represents a chat completion request
type TogetherChatRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Stream      bool               `json:"stream"`
}

// TogetherChatChoice represents a single choice in the response
type TogetherChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// TogetherChatResponse represents a chat completion response
type TogetherChatResponse struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []TogetherChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// TogetherImageRequest represents an image generation request
type TogetherImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

// TogetherImageResponse represents an image generation response
type TogetherImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewTogetherService creates a new Together AI service
func NewTogetherService(apiKey, modelName, backendModel, imageModelName, imageDir string) *TogetherService {
	return &TogetherService{
		apiKey:         apiKey,
		modelName:      modelName,
		backendModel:   backendModel,
		imageModelName: imageModelName,
		imageDir:       imageDir,
		baseURL:        togetherBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// InitModel initializes the model (Together AI requires no explicit initialization)
func (s *TogetherService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// chatCompletion makes a chat completion request with the specified model
func (s *TogetherService) chatCompletion(ctx context.Context, messages []chat.ChatMessage, modelName string, temperature float64) (string, error) {
	togetherReq := TogetherChatRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   DefaultTogetherMaxTokens,
		Stream:      false,
	}

	reqBody, err := json.Marshal(togetherReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var togetherResp TogetherChatResponse
	if err := json.Unmarshal(body, &togetherResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if togetherResp.Error != nil {
		return "", fmt.Errorf("API error: %s", togetherResp.Error.Message)
	}

	if len(togetherResp.Choices) == 0 {
		return msgNoResponse, nil
	}

	return togetherResp.Choices[0].Message.Content, nil
}

// Chat generates a narrative response with the main model
func (s *TogetherService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	content, err := s.chatCompletion(ctx, messages, s.modelName, NarrativeTemperature)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content}, nil
}

// Generate runs a single completion with the backend model at the given
// temperature and returns the raw text.
func (s *TogetherService) Generate(ctx context.Context, messages []chat.ChatMessage, temperature float64) (string, error) {
	return s.chatCompletion(ctx, messages, s.backendModel, temperature)
}

// GenerateImage creates a scene illustration and writes it to the image
// directory, returning the file path.
func (s *TogetherService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	imageReq := TogetherImageRequest{
		Model:          s.imageModelName,
		Prompt:         prompt,
		Width:          768,
		Height:         432,
		Steps:          4,
		N:              1,
		ResponseFormat: "b64_json",
	}

	reqBody, err := json.Marshal(imageReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/images/generations", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make image request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var imageResp TogetherImageResponse
	if err := json.Unmarshal(body, &imageResp); err != nil {
		return "", fmt.Errorf("failed to parse image response: %w", err)
	}

	if imageResp.Error != nil {
		return "", fmt.Errorf("image API error: %s", imageResp.Error.Message)
	}

	if len(imageResp.Data) == 0 {
		return "", fmt.Errorf("no image data in response")
	}

	raw, err := base64.StdEncoding.DecodeString(imageResp.Data[0].B64JSON)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	if err := os.MkdirAll(s.imageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}

	path := filepath.Join(s.imageDir, uuid.New().String()+".png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}
