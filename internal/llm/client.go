package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pine-backend/internal/config"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Fallback replies returned instead of an error so the pipeline always has
// some reply text to carry forward.
const (
	FallbackNotConfigured = "Sorry, my AI configuration is incomplete."
	FallbackProviderError = "Sorry, I could not generate a reply right now."
	FallbackEmptyReply    = "Sorry, I could not generate a reply."
)

const systemPrompt = "You are PINE AI Assist, a professional assistant for a small business. " +
	"Tone: helpful, concise, polite. Answer the customer and include a short CTA."

// ErrNotConfigured marks the missing-API-key short circuit so the pipeline
// can record the stage as skipped rather than failed.
var ErrNotConfigured = errors.New("GROQ_API_KEY not set")

type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		APIKey:  cfg.GroqAPIKey,
		Model:   cfg.GroqModel,
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateReply sends the two-turn prompt to Groq and returns the reply
// text. The returned string is always usable: on any failure it is one of
// the fallback strings and the error only describes what went wrong.
func (c *Client) GenerateReply(ctx context.Context, message string) (string, error) {
	if c.APIKey == "" {
		return FallbackNotConfigured, ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Customer message: %q", message)},
		},
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return FallbackProviderError, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return FallbackProviderError, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return FallbackProviderError, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return FallbackProviderError, err
	}

	if resp.StatusCode >= 400 {
		return FallbackProviderError, fmt.Errorf("groq API error: %s - %s", resp.Status, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return FallbackProviderError, fmt.Errorf("groq response decode: %w", err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return FallbackEmptyReply, nil
	}

	return extractReplyText(parsed.Choices[0].Message.Content), nil
}

// extractReplyText handles the two shapes the model answers in: plain text,
// or a JSON envelope with a reply_text field. Non-JSON content is used
// verbatim, never treated as an error.
func extractReplyText(content string) string {
	var envelope struct {
		ReplyText string `json:"reply_text"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err == nil && envelope.ReplyText != "" {
		return envelope.ReplyText
	}
	return content
}
