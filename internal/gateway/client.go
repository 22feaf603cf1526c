// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the storefront agent API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/util"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. https://shop.example.com/api.
	BaseURL string

	// Token is sent as a Bearer credential. May be empty for anonymous use.
	Token string

	// Timeout bounds every request (default: 30s).
	Timeout time.Duration

	// UserAgent header value.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:8000/api",
		Timeout:   30 * time.Second,
		UserAgent: "shopassist/1.0",
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type chatBody struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

type inquiryBody struct {
	Message string `json:"message"`
}

type switchBody struct {
	AgentType string `json:"agent_type"`
}

type wireAction struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

type chatResponse struct {
	AgentName        string       `json:"agent_name"`
	AgentType        string       `json:"agent_type"`
	Response         string       `json:"response"`
	SuggestedActions []wireAction `json:"suggested_actions"`
}

type agentsResponse struct {
	Agents []model.Persona `json:"agents"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the agent endpoints over HTTP+JSON.
//
// The Client is safe for concurrent use. It never retries: a failed call is
// reported once and the conversation decides what to show.
//
// Example:
//
//	client := gateway.NewClientWithConfig(&gateway.ClientConfig{BaseURL: url, Token: tok})
//	reply, err := client.Chat(ctx, gateway.ChatRequest{Message: "Any deals today?"})
type Client struct {
	config *ClientConfig
	http   *resty.Client

	mu    sync.RWMutex
	token string
}

var _ Gateway = (*Client)(nil)

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}

	c := &Client{config: config, token: config.Token}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", config.UserAgent).
		SetTimeout(config.Timeout).
		SetRetryCount(0)
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		if tok := c.Token(); tok != "" {
			r.SetAuthToken(tok)
		}
		return nil
	})
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token, e.g. after sign-in or sign-out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// =============================================================================
// API METHODS
// =============================================================================

// ListPersonas returns the available agent personas.
func (c *Client) ListPersonas(ctx context.Context) ([]model.Persona, error) {
	var out agentsResponse
	if err := c.do(ctx, "list personas", "GET", "/agents/available", nil, &out); err != nil {
		return nil, err
	}
	personas := make([]model.Persona, 0, len(out.Agents))
	for _, p := range out.Agents {
		if p.Type == "" {
			continue
		}
		personas = append(personas, p)
	}
	return personas, nil
}

// Chat sends one user turn.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Reply, error) {
	var out chatResponse
	body := chatBody{Message: req.Message, Context: req.MergedContext()}
	if err := c.do(ctx, "chat", "POST", "/agents/chat", body, &out); err != nil {
		return nil, err
	}
	return toReply("chat", &out)
}

// SwitchPersona asks the backend to change the active persona. The backend
// answers 400 for an unknown type.
func (c *Client) SwitchPersona(ctx context.Context, personaType string) error {
	err := c.do(ctx, "switch agent", "POST", "/agents/switch-agent", switchBody{AgentType: personaType}, nil)
	var ce *ClientError
	if errors.As(err, &ce) && ce.StatusCode == 400 {
		ce.Type = ErrTypeInvalidPersona
	}
	return err
}

// ProductInquiry asks the product endpoint about productID.
func (c *Client) ProductInquiry(ctx context.Context, productID, question string) (*Reply, error) {
	var out chatResponse
	path := "/agents/product-inquiry/" + url.PathEscape(productID)
	if err := c.do(ctx, "product inquiry", "POST", path, inquiryBody{Message: question}, &out); err != nil {
		return nil, err
	}
	return toReply("product inquiry", &out)
}

// OrderStatus asks the order endpoint about orderID.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (*Reply, error) {
	var out chatResponse
	path := "/agents/order-status/" + url.PathEscape(orderID)
	if err := c.do(ctx, "order status", "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return toReply("order status", &out)
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	r := c.http.R().SetContext(ctx)
	if body != nil {
		r.SetBody(body)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return transportError(op, err)
	}
	if resp.IsError() {
		return statusError(op, resp.StatusCode(), resp.String())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: op + ": malformed body", StatusCode: resp.StatusCode(), Cause: err}
	}
	return nil
}

func toReply(op string, out *chatResponse) (*Reply, error) {
	if strings.TrimSpace(out.Response) == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: op + ": empty response"}
	}
	reply := &Reply{
		Text:        out.Response,
		AgentName:   out.AgentName,
		PersonaType: out.AgentType,
	}
	for _, a := range out.SuggestedActions {
		if a.Action == "" {
			continue
		}
		label := a.Text
		if label == "" {
			label = a.Action
		}
		reply.SuggestedActions = append(reply.SuggestedActions, model.SuggestedAction{Label: label, ActionID: a.Action})
	}
	return reply, nil
}

// errorDetail extracts a FastAPI-style {"detail": "..."} message, falling
// back to a truncated raw body.
func errorDetail(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
	}
	return util.TruncateRunes(util.FirstLine(body), 120)
}
