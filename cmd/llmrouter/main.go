// Package main is the entry point for the llmgateway gateway.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relaygate/llmgateway/internal/config"
	"github.com/relaygate/llmgateway/internal/edge"
	"github.com/relaygate/llmgateway/internal/forward"
	"github.com/relaygate/llmgateway/internal/logging"
	"github.com/relaygate/llmgateway/internal/router"
)

var (
	flagConfig   string
	flagIP       string
	flagPort     int
	flagToken    string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	cmd := &cobra.Command{
		Use:   "llmgateway",
		Short: "Multi-dialect LLM gateway: OpenAI, Anthropic, and Gemini clients over any configured backend.",
		RunE:  run,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "config.yaml", "path to the gateway config file")
	cmd.Flags().StringVar(&flagIP, "ip", "", "listen address (overrides config)")
	cmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&flagToken, "token", "", "auth token clients must present (overrides config)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flagLogFile, "log-file", "", "rotating log file path (empty disables file logging)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := logging.New(flagLogLevel, flagLogFile)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg)

	rt := router.New(cfg, log, nil)
	rt.SelfCheck()

	handler := &reloadableHandler{}
	handler.store(edge.New(cfg, rt, forward.New(nil), log))

	var currentRouter atomic.Pointer[router.Router]
	currentRouter.Store(rt)

	cfgStore := config.NewStore(cfg)
	watcher, err := config.NewWatcher(flagConfig, cfgStore, log, func(newCfg *config.Config) {
		applyFlagOverrides(newCfg)
		prevTrackers := currentRouter.Load().Trackers()
		newRouter := router.New(newCfg, log, prevTrackers)
		newRouter.SelfCheck()
		currentRouter.Store(newRouter)
		handler.store(edge.New(newCfg, newRouter, forward.New(nil), log))
	})
	if err != nil {
		log.Warn("config watcher did not start, hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("llmgateway listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-sigc:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if flagIP != "" {
		cfg.Server.IP = flagIP
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagToken != "" {
		cfg.Server.Token = flagToken
	}
}

// reloadableHandler lets a config reload swap in a freshly built edge.Server
// without restarting the listener or dropping in-flight connections.
type reloadableHandler struct {
	current atomic.Pointer[edge.Server]
}

func (h *reloadableHandler) store(s *edge.Server) { h.current.Store(s) }

func (h *reloadableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().ServeHTTP(w, r)
}
