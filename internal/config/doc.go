// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for medchat.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GatewayConfig: API gateway address, timeout and throttling
//   - StorageConfig: Local credential database settings
//   - MediaConfig: Microphone capture and upload limits
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MEDCHAT_*, VITE_API_BASE_URL)
//   - ~/.medchat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	base := cfg.Gateway.BaseURL
package config
