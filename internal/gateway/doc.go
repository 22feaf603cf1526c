// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the storefront agent API.
//
// # Key Types
//
//   - Gateway: the interface the conversation manager depends on
//   - Client: HTTP+JSON implementation on resty
//   - Offline: canned in-process implementation
//   - ClientError: typed errors (timeout, unauthorized, invalid persona, ...)
//   - Identity: shopper claims read from the bearer token
//   - Metrics: prometheus collectors, applied with Instrument
//
// # Endpoints
//
//	GET  /agents/available
//	POST /agents/chat
//	POST /agents/switch-agent
//	POST /agents/product-inquiry/{id}
//	GET  /agents/order-status/{id}
//
// # Usage
//
//	client := gateway.NewClientWithConfig(&gateway.ClientConfig{
//	    BaseURL: "https://shop.example.com/api",
//	    Token:   token,
//	})
//	g := gateway.Instrument(client, gateway.NewMetrics(prometheus.DefaultRegisterer))
//	reply, err := g.Chat(ctx, gateway.ChatRequest{Message: "Any deals?"})
//	if gateway.IsTimeout(err) {
//	    // show the fallback reply
//	}
package gateway
