// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopassist/internal/config"
	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/gateway"
	"github.com/jeranaias/shopassist/internal/logging"
	"github.com/jeranaias/shopassist/internal/session"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig reads the config file (or defaults) and applies flag overrides.
// Flags win over the file and the environment.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := o.loadFileConfig()
	if err != nil {
		return nil, err
	}

	if o.baseURL != "" {
		cfg.Gateway.BaseURL = o.baseURL
	}
	if o.token != "" {
		cfg.Gateway.Token = o.token
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.offline {
		cfg.Gateway.Offline = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// loadFileConfig reads the config file (or defaults) without flag overrides.
func (o *globalOptions) loadFileConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromPath(o.configPath)
	}
	return config.Load()
}

// configFilePath is the file config set writes to.
func (o *globalOptions) configFilePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	for _, ext := range []string{"toml", "yaml", "yml", "json"} {
		path, err := config.ConfigPath(ext)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return config.ConfigPath("toml")
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app bundles everything a command needs to talk to the assistants.
type app struct {
	cfg  *config.Config
	log  zerolog.Logger
	gw   gateway.Gateway
	sess *session.Manager

	// client is the HTTP gateway under gw, nil when offline.
	client *gateway.Client
	conv *conversation.Manager

	closers []io.Closer
	metrics *http.Server
}

// appOptions tweaks wiring per command.
type appOptions struct {
	// logToFile sends logs to the log file; the full-screen UI owns stdout
	// and stderr.
	logToFile bool

	// stderr receives logs otherwise.
	stderr io.Writer
}

// newApp wires config, logging, the gateway, the session and the
// conversation manager.
func newApp(ctx context.Context, opts *globalOptions, aopts appOptions) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	logOpts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Out:    aopts.stderr,
	}
	if aopts.logToFile && logOpts.File == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		logOpts.File = filepath.Join(dir, "shopassist.log")
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	a.log = logger
	a.closers = append(a.closers, closer)

	a.gw = a.newGateway()
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.gw = gateway.Instrument(a.gw, gateway.NewMetrics(reg))
		a.serveMetrics(reg)
	}

	store, err := session.OpenStore(ctx, cfg.Session)
	if err != nil {
		a.log.Warn().Err(err).Str("store", cfg.Session.VisitStore).Msg("visit store unavailable, greeting every start")
		store = session.NewMemoryStore()
	}
	a.sess = session.NewManager(session.Config{
		Profile:       cfg.Session.Profile,
		AutoOpenDelay: cfg.Chat.AutoOpenDelay(),
		Welcome:       cfg.Chat.Welcome,
		OnSignOut:     a.clearCredentials,
	}, store, logging.Component(a.log, "session"))
	a.closers = append(a.closers, a.sess)

	if cfg.Gateway.Token != "" {
		id, err := gateway.IdentityFromToken(cfg.Gateway.Token)
		if err != nil {
			a.log.Warn().Err(err).Msg("could not read shopper identity from token")
		} else {
			if id.Expired(time.Now()) {
				a.log.Warn().Time("expired_at", id.ExpiresAt).Msg("bearer token has expired")
			}
			a.sess.SetIdentity(id)
		}
	}

	a.conv = conversation.NewManager(conversation.Options{
		Gateway:         a.gw,
		Logger:          a.log,
		SessionContext:  a.sess.SessionContext,
		ProductQuestion: cfg.Chat.ProductQuestion,
		FallbackText:    cfg.Chat.FallbackText,
		Open:            cfg.Chat.StartOpen,
	})

	a.log.Debug().
		Str("base_url", cfg.Gateway.BaseURL).
		Bool("offline", cfg.Gateway.Offline).
		Str("session_id", a.sess.SessionID()).
		Msg("shopassist started")
	return a, nil
}

func (a *app) newGateway() gateway.Gateway {
	if a.cfg.Gateway.Offline {
		return gateway.NewOffline()
	}
	a.client = gateway.NewClientWithConfig(&gateway.ClientConfig{
		BaseURL:   a.cfg.Gateway.BaseURL,
		Token:     a.cfg.Gateway.Token,
		Timeout:   a.cfg.Gateway.Timeout(),
		UserAgent: a.cfg.Gateway.UserAgent,
	})
	return a.client
}

// clearCredentials drops the bearer token so later requests are anonymous.
func (a *app) clearCredentials() {
	if a.client != nil {
		a.client.SetToken("")
	}
	a.log.Debug().Msg("gateway credentials cleared")
}

// serveMetrics exposes reg on the configured listen address. Listener errors
// are logged, never fatal.
func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	a.metrics = &http.Server{
		Addr:              a.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Str("listen", a.cfg.Metrics.Listen).Msg("metrics listener stopped")
		}
	}()
	a.log.Info().Str("listen", a.cfg.Metrics.Listen).Msg("serving metrics")
}

// Close releases the conversation, the visit store, the metrics listener and
// the log file.
func (a *app) Close() error {
	var errs []error
	if a.conv != nil {
		a.conv.Close()
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		errs = append(errs, a.metrics.Shutdown(ctx))
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
