package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/markis/gh-copilot-chat/internal/config"
	"github.com/markis/gh-copilot-chat/internal/stream"
)

// AuthorizationResponse represents the structure of the response from the GitHub API for authorization.
type AuthorizationResponse struct {
	Token string `json:"token"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatRequest is the body posted to /chat/completions.
type ChatRequest struct {
	Messages      []Message      `json:"messages"`
	Model         string         `json:"model"`
	Stream        bool           `json:"stream"`
	N             int            `json:"n,omitempty"`
	TopP          float64        `json:"top_p,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

// Client talks to the Copilot chat API.
type Client struct {
	cfg    config.Config
	logger stream.Logger
	token  func() (string, error)
}

func New(cfg config.Config, logger stream.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		token:  getGitHubToken,
	}
}

// defaultHeaders returns the default headers for the API requests.
func defaultHeaders() map[string]string {
	return map[string]string{
		"Editor-Version":         "vscode/1.100.2",
		"Copilot-Integration-Id": "vscode-chat",
	}
}

// getHeaders retrieves the authorization headers required for the API requests.
func (c *Client) getHeaders(ctx context.Context) (map[string]string, error) {
	token, err := c.token()
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.API.GitHubURL+"/copilot_internal/v2/token", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	headers := defaultHeaders()
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status code: %d", resp.StatusCode)
	}

	auth := AuthorizationResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if auth.Token == "" {
		return nil, errors.New("received empty token in response")
	}

	headers["Authorization"] = "Bearer " + auth.Token
	return headers, nil
}

// prepareInput builds the chat request for the given prompts; each prompt
// becomes one user message.
func (c *Client) prepareInput(prompts []string, modelID string) ChatRequest {
	messages := make([]Message, 0, len(prompts))
	for _, prompt := range prompts {
		messages = append(messages, Message{Role: "user", Content: prompt})
	}

	req := ChatRequest{
		Messages: messages,
		Model:    modelID,
		Stream:   true,
	}

	// o1 models reject sampling parameters
	if !strings.HasPrefix(modelID, "o1") {
		req.N = 1
		req.TopP = 1
	}
	if c.cfg.API.IncludeUsage {
		req.StreamOptions = &StreamOptions{IncludeUsage: true}
	}

	return req
}

var (
	httpClient            *http.Client
	httpClientOnce        sync.Once
	responseHeaderTimeout = 60 * time.Second
)

// getHTTPClient returns the shared streaming client. It sets no overall
// timeout; the request context bounds the body and ResponseHeaderTimeout
// bounds the wait for headers.
func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: responseHeaderTimeout,
				ForceAttemptHTTP2:     true,
			},
		}
	})
	return httpClient
}

// Ask sends the prompts to the chat completions endpoint and returns the
// stream of decoded events. The channel is closed once the response has been
// fully read.
func (c *Client) Ask(ctx context.Context, prompts []string, model string) (<-chan stream.Event, error) {
	headers, err := c.getHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get headers: %w", err)
	}

	data, err := json.Marshal(c.prepareInput(prompts, model))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.API.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer c.closeBody(resp.Body)
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	parser := stream.NewParser(ctx, c.logger)
	go func() {
		defer c.closeBody(resp.Body)
		parser.Process(resp.Body)
	}()

	return parser.Events(), nil
}

func (c *Client) closeBody(body io.Closer) {
	if err := body.Close(); err != nil && c.logger != nil {
		c.logger.Warn("failed to close response body", "err", err)
	}
}
