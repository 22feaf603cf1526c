// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopassist/internal/config"
	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/gateway"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate points the config directory at a temp dir and disables .env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SHOPASSIST_HOME", dir)
	prev := config.DotEnvFile
	config.DotEnvFile = ""
	config.ResetGlobalForTesting()
	t.Cleanup(func() {
		config.DotEnvFile = prev
		config.ResetGlobalForTesting()
	})
	return dir
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	return resp
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestVersionJSON(t *testing.T) {
	isolate(t)
	r := run(t, "", "version", "--json")
	require.NoError(t, r.err)

	resp := decodeJSON(t, r.stdout)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, Version, data["version"])
	assert.Equal(t, "version", resp["command"])
}

func TestAskOffline(t *testing.T) {
	isolate(t)
	r := run(t, "", "--offline", "ask", "any", "deals", "today?")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Sales Assistant")
	assert.Contains(t, r.stdout, "on sale this week")
	assert.Contains(t, r.stdout, "[1]")
}

func TestAskOffline_JSON(t *testing.T) {
	isolate(t)
	r := run(t, "", "--offline", "ask", "--json", "compare the specs please")
	require.NoError(t, r.err, r.stderr)

	resp := decodeJSON(t, r.stdout)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "agent", data["role"])
	assert.Equal(t, "product_expert", data["agent_persona"])
}

func TestAskWithAgent(t *testing.T) {
	isolate(t)
	r := run(t, "", "--offline", "ask", "--agent", "support", "hello")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Customer Support")

	r = run(t, "", "--offline", "ask", "--agent", "pirate", "hello")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, conversation.ErrInvalidPersona)
	assert.Equal(t, ExitUsageError, GetExitCode(r.err))
}

func TestAskRequiresText(t *testing.T) {
	isolate(t)
	r := run(t, "", "--offline", "ask")
	assert.Error(t, r.err)
}

func TestProductAndOrderOffline(t *testing.T) {
	isolate(t)

	r := run(t, "", "--offline", "product", "SKU-7", "is", "it", "waterproof?")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Product SKU-7")
	assert.Contains(t, r.stdout, "waterproof")

	r = run(t, "", "--offline", "order", "#1001")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Order #1001")

	r = run(t, "", "--offline", "order", "  ")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, conversation.ErrEmptyInput)
}

func TestPersonasOffline(t *testing.T) {
	isolate(t)
	r := run(t, "", "--offline", "personas")
	require.NoError(t, r.err)
	for _, want := range []string{"sales", "product_expert", "support", "Customer Support"} {
		assert.Contains(t, r.stdout, want)
	}

	r = run(t, "", "--offline", "agents", "--json")
	require.NoError(t, r.err)
	data := decodeJSON(t, r.stdout)["data"].([]any)
	assert.Len(t, data, 3)
}

func TestChatREPL(t *testing.T) {
	isolate(t)
	script := strings.Join([]string{
		"hello there",
		"1",
		"/agent support",
		"/agent pirate",
		"/order 55",
		"/history order",
		"/dance",
		"/quit",
		"never sent",
	}, "\n")

	r := run(t, script, "--offline", "chat")
	require.NoError(t, r.err, r.stderr)

	out := r.stdout
	assert.Contains(t, out, "Welcome", "first visit is greeted")
	assert.Contains(t, out, "on sale this week")
	assert.Contains(t, out, "Switched to Customer Support")
	assert.Contains(t, out, "unknown assistant")
	assert.Contains(t, out, "Order #55")
	assert.Contains(t, out, "unknown command '/dance'")
	assert.NotContains(t, out, "never sent")
}

func TestChatREPL_ReturningVisitorNotGreeted(t *testing.T) {
	isolate(t)
	first := run(t, "/quit\n", "--offline", "chat")
	require.NoError(t, first.err)

	second := run(t, "/quit\n", "--offline", "chat")
	require.NoError(t, second.err)
	assert.NotContains(t, second.stdout, "Welcome")
}

func TestChatREPL_SignOutDropsBearerToken(t *testing.T) {
	isolate(t)

	var mu sync.Mutex
	var chatAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/agents/available":
			_, _ = w.Write([]byte(`{"agents":[{"type":"sales","name":"Sales Assistant","description":"deals"}]}`))
		case "/agents/chat":
			mu.Lock()
			chatAuth = append(chatAuth, r.Header.Get("Authorization"))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"agent_name":"Sales Assistant","agent_type":"sales","response":"Happy to help.","suggested_actions":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	script := "before\n/signout\nafter\n/quit\n"
	r := run(t, script, "--base-url", srv.URL, "--token", "shopper-token", "chat")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Signed out.")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, chatAuth, 2)
	assert.Equal(t, "Bearer shopper-token", chatAuth[0])
	assert.Empty(t, chatAuth[1], "no credentials after sign-out")
}

func TestChatREPL_Export(t *testing.T) {
	dir := isolate(t)
	exportDir := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(exportDir, 0700))
	t.Setenv("SHOPASSIST_UI_EXPORT_DIR", exportDir)

	r := run(t, "hello\n/export md\n/export xml\n", "--offline", "chat")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Saved to")
	assert.Contains(t, r.stdout, "unsupported format")

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".md", filepath.Ext(entries[0].Name()))
}

func TestConfigSetGet(t *testing.T) {
	dir := isolate(t)

	r := run(t, "", "config", "set", "ui.theme", "light")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Saved")
	_, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	config.ResetGlobalForTesting()
	r = run(t, "", "config", "get", "ui.theme")
	require.NoError(t, r.err)
	assert.Equal(t, "light", strings.TrimSpace(r.stdout))

	r = run(t, "", "config", "set", "ui.theme", "neon")
	require.Error(t, r.err)
	assert.Equal(t, ExitConfigError, GetExitCode(r.err))

	r = run(t, "", "config", "get", "nope.key")
	require.Error(t, r.err)
	assert.Equal(t, ExitUsageError, GetExitCode(r.err))
}

func TestConfigShowRedactsToken(t *testing.T) {
	isolate(t)
	r := run(t, "", "--token", "secret-token", "config", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "[REDACTED]")
	assert.NotContains(t, r.stdout, "secret-token")
}

func TestConfigPathUsesExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  offline: true\n"), 0600))

	r := run(t, "", "--config", path, "config", "path")
	require.NoError(t, r.err)
	assert.Equal(t, path, strings.TrimSpace(r.stdout))

	r = run(t, "", "--config", path, "config", "set", "log.level", "debug")
	require.NoError(t, r.err, r.stderr)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: debug")
}

func TestInvalidBaseURL(t *testing.T) {
	isolate(t)
	r := run(t, "", "--base-url", "ftp://shop.example.com", "ask", "hi")
	require.Error(t, r.err)
	assert.Equal(t, ExitConfigError, GetExitCode(r.err))
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", ErrMissingArgument("order id", "/order <id>"), ExitUsageError},
		{"config", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"invalid persona", fmt.Errorf("%w: %q", conversation.ErrInvalidPersona, "x"), ExitUsageError},
		{"unauthorized", &gateway.ClientError{Type: gateway.ErrTypeUnauthorized}, ExitAuthError},
		{"unavailable", fmt.Errorf("wrapped: %w", &gateway.ClientError{Type: gateway.ErrTypeUnavailable}), ExitNetworkError},
		{"timeout", &gateway.ClientError{Type: gateway.ErrTypeTimeout}, ExitTimeoutError},
		{"not found", &gateway.ClientError{Type: gateway.ErrTypeNotFound}, ExitNotFoundError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetExitCode(tc.err))
		})
	}
}

func TestErrorHint(t *testing.T) {
	assert.Contains(t, errorHint(&gateway.ClientError{Type: gateway.ErrTypeUnavailable}), "--offline")
	assert.Contains(t, errorHint(conversation.ErrInvalidPersona), "personas")
	assert.Empty(t, errorHint(errors.New("boom")))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationErrorWithExample("assistant", "pirate", "unknown assistant", "/agent support")
	assert.Equal(t, "invalid assistant: unknown assistant (got: pirate)\nExample: /agent support", err.Error())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45e9))
	assert.Equal(t, "2m 5s", formatDuration(125e9))
	assert.Equal(t, "1h 1m", formatDuration(3660e9))
}
