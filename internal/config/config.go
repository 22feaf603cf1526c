// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/shopassist/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shopassist configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	Gateway GatewayConfig `toml:"gateway" json:"gateway" yaml:"gateway" envPrefix:"GATEWAY_"`
	Chat    ChatConfig    `toml:"chat" json:"chat" yaml:"chat" envPrefix:"CHAT_"`
	Session SessionConfig `toml:"session" json:"session" yaml:"session" envPrefix:"SESSION_"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui" envPrefix:"UI_"`
	Log     LogConfig     `toml:"log" json:"log" yaml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`
}

// GatewayConfig describes the agent API.
type GatewayConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Token       string `toml:"token" json:"token" yaml:"token" env:"TOKEN"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	UserAgent   string `toml:"user_agent" json:"user_agent" yaml:"user_agent" env:"USER_AGENT"`

	// Offline answers from canned replies instead of calling BaseURL.
	Offline bool `toml:"offline" json:"offline" yaml:"offline" env:"OFFLINE"`
}

// Timeout returns TimeoutSecs as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// ChatConfig holds conversation behaviour.
type ChatConfig struct {
	ProductQuestion string `toml:"product_question" json:"product_question" yaml:"product_question" env:"PRODUCT_QUESTION"`
	FallbackText    string `toml:"fallback_text" json:"fallback_text" yaml:"fallback_text" env:"FALLBACK_TEXT"`

	// Welcome seeds a greeting on the first visit of a profile.
	Welcome         bool `toml:"welcome" json:"welcome" yaml:"welcome" env:"WELCOME"`
	AutoOpenDelayMs int  `toml:"auto_open_delay_ms" json:"auto_open_delay_ms" yaml:"auto_open_delay_ms" env:"AUTO_OPEN_DELAY_MS"`
	StartOpen       bool `toml:"start_open" json:"start_open" yaml:"start_open" env:"START_OPEN"`
}

// AutoOpenDelay returns AutoOpenDelayMs as a duration.
func (c ChatConfig) AutoOpenDelay() time.Duration {
	return time.Duration(c.AutoOpenDelayMs) * time.Millisecond
}

// SessionConfig selects where first-visit markers live.
type SessionConfig struct {
	// VisitStore is one of: memory, file, sqlite, redis.
	VisitStore    string `toml:"visit_store" json:"visit_store" yaml:"visit_store" env:"VISIT_STORE"`
	VisitPath     string `toml:"visit_path" json:"visit_path" yaml:"visit_path" env:"VISIT_PATH"`
	RedisURL      string `toml:"redis_url" json:"redis_url" yaml:"redis_url" env:"REDIS_URL"`
	RedisTTLHours int    `toml:"redis_ttl_hours" json:"redis_ttl_hours" yaml:"redis_ttl_hours" env:"REDIS_TTL_HOURS"`

	// Profile names the visitor; defaults to the OS user.
	Profile string `toml:"profile" json:"profile" yaml:"profile" env:"PROFILE"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	Theme                  string  `toml:"theme" json:"theme" yaml:"theme" env:"THEME"`
	RenderMarkdown         bool    `toml:"render_markdown" json:"render_markdown" yaml:"render_markdown" env:"RENDER_MARKDOWN"`
	ShowTimestamps         bool    `toml:"show_timestamps" json:"show_timestamps" yaml:"show_timestamps" env:"SHOW_TIMESTAMPS"`
	MaxToasts              int     `toml:"max_toasts" json:"max_toasts" yaml:"max_toasts" env:"MAX_TOASTS"`
	NotificationsPerSecond float64 `toml:"notifications_per_second" json:"notifications_per_second" yaml:"notifications_per_second" env:"NOTIFICATIONS_PER_SECOND"`
	ExportDir              string  `toml:"export_dir" json:"export_dir" yaml:"export_dir" env:"EXPORT_DIR"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level" env:"LEVEL"`
	Format string `toml:"format" json:"format" yaml:"format" env:"FORMAT"`
	File   string `toml:"file" json:"file" yaml:"file" env:"FILE"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	// Listen, when set, serves /metrics on this address.
	Listen string `toml:"listen" json:"listen" yaml:"listen" env:"LISTEN"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	dir, _ := ConfigDir()
	return &Config{
		Version: "1",
		Gateway: GatewayConfig{
			BaseURL:     "http://127.0.0.1:8000/api",
			TimeoutSecs: 30,
			UserAgent:   "shopassist/1.0",
		},
		Chat: ChatConfig{
			ProductQuestion: "Tell me about this product",
			FallbackText:    "Sorry, I encountered an error. Please try again or refresh the page.",
			Welcome:         true,
			AutoOpenDelayMs: 2000,
		},
		Session: SessionConfig{
			VisitStore:    "file",
			VisitPath:     filepath.Join(dir, "visits.json"),
			RedisTTLHours: 24 * 365,
		},
		UI: UIConfig{
			Theme:                  "dark",
			RenderMarkdown:         true,
			ShowTimestamps:         true,
			MaxToasts:              5,
			NotificationsPerSecond: 2,
			ExportDir:              ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dir, "shopassist.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the shopassist configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SHOPASSIST_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shopassist"), nil
}

// ConfigPath returns the path of a config file with the given extension.
func ConfigPath(ext string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config."+strings.TrimPrefix(ext, ".")), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600; they hold the
// gateway token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the first config file found in ConfigDir, falling back to
// defaults, then applies environment overrides and validates.
func Load() (*Config, error) {
	for _, ext := range []string{"toml", "yaml", "yml", "json"} {
		path, err := ConfigPath(ext)
		if err != nil {
			break
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension; anything unrecognised is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg and fills missing values.
func LoadTOML(cfg *Config, path string) error {
	warnPermissions(path)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg, func(key string) bool { return md.IsDefined(strings.Split(key, ".")...) })
	return nil
}

// LoadYAML decodes a YAML file into cfg and fills missing values.
func LoadYAML(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	var raw map[string]any
	_ = yaml.Unmarshal(data, &raw)
	fillDefaults(cfg, definedIn(raw))
	return nil
}

// LoadJSON decodes a JSON file into cfg and fills missing values.
func LoadJSON(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	fillDefaults(cfg, definedIn(raw))
	return nil
}

func warnPermissions(path string) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
}

// definedIn reports whether a dotted key is present in a decoded document.
func definedIn(raw map[string]any) func(string) bool {
	return func(key string) bool {
		var cur any = raw
		for _, part := range strings.Split(key, ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				return false
			}
			if cur, ok = m[part]; !ok {
				return false
			}
		}
		return true
	}
}

// fillDefaults fills zero values with defaults. Booleans are only defaulted
// when the file did not mention them, so an explicit false survives.
func fillDefaults(cfg *Config, defined func(key string) bool) {
	d := Default()

	if cfg.Version == "" {
		cfg.Version = d.Version
	}

	// Gateway
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = d.Gateway.BaseURL
	}
	if cfg.Gateway.TimeoutSecs == 0 {
		cfg.Gateway.TimeoutSecs = d.Gateway.TimeoutSecs
	}
	if cfg.Gateway.UserAgent == "" {
		cfg.Gateway.UserAgent = d.Gateway.UserAgent
	}

	// Chat
	if cfg.Chat.ProductQuestion == "" {
		cfg.Chat.ProductQuestion = d.Chat.ProductQuestion
	}
	if cfg.Chat.FallbackText == "" {
		cfg.Chat.FallbackText = d.Chat.FallbackText
	}
	if !defined("chat.welcome") {
		cfg.Chat.Welcome = d.Chat.Welcome
	}
	if !defined("chat.auto_open_delay_ms") {
		cfg.Chat.AutoOpenDelayMs = d.Chat.AutoOpenDelayMs
	}

	// Session
	if cfg.Session.VisitStore == "" {
		cfg.Session.VisitStore = d.Session.VisitStore
	}
	if cfg.Session.VisitPath == "" {
		cfg.Session.VisitPath = d.Session.VisitPath
	}
	if cfg.Session.RedisTTLHours == 0 {
		cfg.Session.RedisTTLHours = d.Session.RedisTTLHours
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if !defined("ui.render_markdown") {
		cfg.UI.RenderMarkdown = d.UI.RenderMarkdown
	}
	if !defined("ui.show_timestamps") {
		cfg.UI.ShowTimestamps = d.UI.ShowTimestamps
	}
	if cfg.UI.MaxToasts == 0 {
		cfg.UI.MaxToasts = d.UI.MaxToasts
	}
	if cfg.UI.NotificationsPerSecond == 0 {
		cfg.UI.NotificationsPerSecond = d.UI.NotificationsPerSecond
	}
	if cfg.UI.ExportDir == "" {
		cfg.UI.ExportDir = d.UI.ExportDir
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.Log.File == "" {
		cfg.Log.File = d.Log.File
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath("toml")
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# shopassist configuration file\n")
	sb.WriteString("# Generated by shopassist - edit with care\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveYAML writes the configuration as YAML with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveToPath writes cfg in the format implied by the extension of path.
func SaveToPath(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(cfg, path)
	case ".yaml", ".yml":
		return SaveYAML(cfg, path)
	default:
		return SaveTOML(cfg, path)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Gateway
	if !c.Gateway.Offline {
		u, err := url.Parse(c.Gateway.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			add("gateway.base_url", "must be an http(s) URL, got '%s'", c.Gateway.BaseURL)
		}
	}
	if c.Gateway.TimeoutSecs < 1 || c.Gateway.TimeoutSecs > 600 {
		add("gateway.timeout_secs", "must be between 1 and 600, got %d", c.Gateway.TimeoutSecs)
	}

	// Chat
	if c.Chat.AutoOpenDelayMs < 0 {
		add("chat.auto_open_delay_ms", "must not be negative")
	}

	// Session
	switch strings.ToLower(c.Session.VisitStore) {
	case "memory", "file", "sqlite":
	case "redis":
		if c.Session.RedisURL == "" {
			add("session.redis_url", "required when visit_store is redis")
		}
	default:
		add("session.visit_store", "invalid store '%s', must be one of: memory, file, sqlite, redis", c.Session.VisitStore)
	}
	if c.Session.RedisTTLHours < 0 {
		add("session.redis_ttl_hours", "must not be negative")
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}
	if c.UI.MaxToasts < 1 || c.UI.MaxToasts > 20 {
		add("ui.max_toasts", "must be between 1 and 20, got %d", c.UI.MaxToasts)
	}
	if c.UI.NotificationsPerSecond <= 0 {
		add("ui.notifications_per_second", "must be positive")
	}

	// Log
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		add("log.format", "invalid format '%s', must be console or json", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "gateway.base_url").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from a value with type conversion.
func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"gateway.base_url",
		"gateway.token",
		"gateway.timeout_secs",
		"gateway.user_agent",
		"gateway.offline",
		"chat.product_question",
		"chat.fallback_text",
		"chat.welcome",
		"chat.auto_open_delay_ms",
		"chat.start_open",
		"session.visit_store",
		"session.visit_path",
		"session.redis_url",
		"session.redis_ttl_hours",
		"session.profile",
		"ui.theme",
		"ui.render_markdown",
		"ui.show_timestamps",
		"ui.max_toasts",
		"ui.notifications_per_second",
		"ui.export_dir",
		"log.level",
		"log.format",
		"log.file",
		"metrics.listen",
	}
}

// Clone creates a copy of the configuration. Config holds only value
// fields, so a struct copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as JSON with the token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Gateway.Token != "" {
		safe.Gateway.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}
