// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// EnvPrefix prefixes every environment variable the config reads,
// e.g. SHOPASSIST_GATEWAY_BASE_URL or SHOPASSIST_LOG_LEVEL.
const EnvPrefix = "SHOPASSIST_"

// DotEnvFile is loaded from the working directory before overrides apply.
// Variables already present in the process environment win.
var DotEnvFile = ".env"

// ApplyEnvOverrides applies SHOPASSIST_* environment variables on top of the
// loaded values. Unset variables leave fields untouched.
func (c *Config) ApplyEnvOverrides() error {
	if DotEnvFile != "" {
		if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", DotEnvFile, err)
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env config: %w", err)
	}
	return nil
}
