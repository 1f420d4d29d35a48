package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel supports requesting reduced output dimensions
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the dimensionality requested from the
	// embedding endpoint; it matches the retrieval store's vector columns
	DefaultEmbeddingDimensions = 384

	// DefaultCaptionModel is the vision model used for slide captioning
	DefaultCaptionModel = "gpt-4o-mini"
	// DefaultReasoningModel is the chat model used when the caller does not
	// pick one from the catalog
	DefaultReasoningModel = "gpt-4o-mini"

	defaultRequestTimeout = 60 * time.Second
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 384")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completion requests
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the OpenAI API for the three capabilities the pipeline
// needs: embeddings, chat completion, and image captioning.
type Client struct {
	api        EmbeddingAPI
	chat       ChatAPI
	dimensions int
	timeout    time.Duration
}

type OpenAIAdapter struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel, dimensions int) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      a.model,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion forwards a chat completion request to the API
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, req)
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	RequestTimeout      time.Duration
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	adapter := NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, dimensions)
	return &Client{
		api:        adapter,
		chat:       adapter,
		dimensions: dimensions,
		timeout:    timeout,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// Complete issues one chat completion request and returns the raw text.
// Transport and service failures never propagate past this boundary: the
// failure is logged and an empty string is returned so callers can apply
// their fallback path. A temperature of 0 requests greedy decoding.
func (c *Client) Complete(ctx context.Context, prompt, model string, maxTokens int, temperature float32) string {
	if model == "" {
		model = DefaultReasoningModel
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		log.Printf("openai: chat completion failed: %v", err)
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// Caption produces a short description of a slide image. Failures degrade
// to an empty caption, never an error.
func (c *Client) Caption(ctx context.Context, img image.Image, model string) string {
	if img == nil {
		return ""
	}
	if model == "" {
		model = DefaultCaptionModel
	}

	encoded, err := encodeImagePNG(img)
	if err != nil {
		log.Printf("openai: image encode failed: %v", err)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 120,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Describe this presentation slide in one short sentence.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/png;base64," + encoded,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("openai: caption request failed: %v", err)
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func encodeImagePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
