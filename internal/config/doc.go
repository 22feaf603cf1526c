// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shopassist.
//
// # Key Types
//
//   - Config: main configuration structure
//   - GatewayConfig: agent API location, token and timeout
//   - ChatConfig: conversation defaults (product question, fallback text, welcome)
//   - SessionConfig: first-visit store selection
//   - UIConfig, LogConfig, MetricsConfig
//
// # Configuration Precedence
//
//   - Environment variables (SHOPASSIST_*), including a ./.env file
//   - ~/.shopassist/config.toml, config.yaml or config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Gateway.BaseURL)
//
//	_ = cfg.Set("chat.start_open", "true")
//	_ = config.Save(cfg)
package config
