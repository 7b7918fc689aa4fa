package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/distiller/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    openAIChatURL,
		model:      chatModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// chat types for OpenAI-compatible APIs
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) domain.GenerationResult {
	return generate(ctx, c, prompt)
}

func (c *OpenAIClient) Classify(ctx context.Context, text string) (domain.Category, error) {
	return classify(ctx, c, text)
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	return completeChat(ctx, c.httpClient, c.baseURL, c.apiKey, c.model, prompt)
}

// completeChat performs one chat completion against an OpenAI-compatible endpoint.
func completeChat(ctx context.Context, client *http.Client, url, apiKey, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", malformed("marshal chat request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", unavailable("create chat request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", unavailable("chat request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("read chat response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", unavailable("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", malformed("unmarshal chat response: %v", err)
	}

	if result.Error != nil {
		return "", unavailable("chat API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", malformed("chat API returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
