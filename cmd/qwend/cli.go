package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"qwend/internal/config"
	"qwend/internal/engine"
	"qwend/internal/fetch"
	"qwend/internal/httpapi"
	"qwend/internal/manager"
)

var version = "dev"

type serveFlags struct {
	configPath   string
	addr         string
	model        string
	weightsURL   string
	tokenizerURL string
	configURL    string
	cacheDir     string
	maxTokens    int
	ctxSize      int
	threads      int
	logLevel     string
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qwend",
		Short:         "Single-model text generation daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), fetchCmd(), versionCmd())
	return root
}

func addServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Optional config file (.yaml/.json/.toml)")
	cmd.Flags().StringVar(&f.addr, "addr", envDefault("QWEND_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&f.model, "model", envDefault("QWEND_MODEL", "qwen3-0.6b-q8"), "Model identifier for status and metrics")
	cmd.Flags().StringVar(&f.weightsURL, "weights-url", os.Getenv("QWEND_WEIGHTS_URL"), "URL of the GGUF weights artifact")
	cmd.Flags().StringVar(&f.tokenizerURL, "tokenizer-url", os.Getenv("QWEND_TOKENIZER_URL"), "URL of the tokenizer artifact")
	cmd.Flags().StringVar(&f.configURL, "config-url", os.Getenv("QWEND_CONFIG_URL"), "Optional URL of the generation config artifact")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", envDefault("QWEND_CACHE_DIR", "~/.cache/qwend"), "Directory for cached artifacts (empty disables caching)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 256, "Default max new tokens per generation")
	cmd.Flags().IntVar(&f.ctxSize, "ctx-size", 4096, "Engine context size")
	cmd.Flags().IntVar(&f.threads, "threads", 4, "Engine worker threads")
	cmd.Flags().StringVar(&f.logLevel, "log-level", envDefault("QWEND_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
}

// applyConfig overlays file values under flag/env values: explicit flags win.
func applyConfig(f *serveFlags) error {
	if f.configPath == "" {
		return nil
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if cfg.Addr != "" {
		f.addr = cfg.Addr
	}
	if cfg.Model != "" {
		f.model = cfg.Model
	}
	if cfg.WeightsURL != "" {
		f.weightsURL = cfg.WeightsURL
	}
	if cfg.TokenizerURL != "" {
		f.tokenizerURL = cfg.TokenizerURL
	}
	if cfg.ConfigURL != "" {
		f.configURL = cfg.ConfigURL
	}
	if cfg.CacheDir != "" {
		f.cacheDir = cfg.CacheDir
	}
	if cfg.MaxTokens > 0 {
		f.maxTokens = cfg.MaxTokens
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model artifacts and serve the generation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(&f); err != nil {
				return err
			}
			if f.weightsURL == "" || f.tokenizerURL == "" {
				return errors.New("weights-url and tokenizer-url are required")
			}
			log := newLogger(f.logLevel)

			mgr := manager.New(manager.Config{
				Model:        f.model,
				WeightsURL:   f.weightsURL,
				TokenizerURL: f.tokenizerURL,
				ConfigURL:    f.configURL,
				CacheDir:     f.cacheDir,
				MaxTokens:    f.maxTokens,
				Factory:      engine.NewLlamaFactory(f.ctxSize, f.threads),
			})
			mgr.SetLogger(log)
			httpapi.SetLogger(log)

			baseCtx, cancelBase := context.WithCancel(context.Background())
			defer cancelBase()
			httpapi.SetBaseContext(baseCtx)

			// Load in the background so /status exposes progress while the
			// artifacts stream in; /generate answers 503 until ready.
			go func() {
				if err := mgr.Load(baseCtx); err != nil {
					log.Error().Err(err).Msg("model load failed; restart to retry")
				}
			}()

			srv := &http.Server{Addr: f.addr, Handler: httpapi.NewMux(mgr)}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", f.addr).Str("model", f.model).Msg("qwend listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
			}
			cancelBase()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return mgr.Close()
		},
	}
	addServeFlags(cmd, &f)
	return cmd
}

func fetchCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the model artifacts into the cache and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(&f); err != nil {
				return err
			}
			if f.weightsURL == "" {
				return errors.New("weights-url is required")
			}
			if f.cacheDir == "" {
				return errors.New("fetch needs a cache-dir")
			}
			log := newLogger(f.logLevel)
			cache, err := fetch.NewCache(f.cacheDir)
			if err != nil {
				return err
			}
			urls := []string{f.weightsURL, f.tokenizerURL, f.configURL}
			for _, u := range urls {
				if u == "" {
					continue
				}
				key := cache.Key(u)
				if _, ok := cache.Get(key); ok {
					log.Info().Str("artifact", key).Msg("already cached")
					continue
				}
				fetcher := fetch.New(func(p fetch.Progress) {
					log.Debug().Float64("percent", p.Percent).Int64("bytes", p.BytesLoaded).Msg("fetching")
				})
				b, err := fetcher.Fetch(cmd.Context(), u)
				if err != nil {
					return err
				}
				if err := cache.Put(key, b); err != nil {
					return err
				}
				log.Info().Str("artifact", key).Int("bytes", len(b)).Msg("cached")
			}
			return nil
		},
	}
	addServeFlags(cmd, &f)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the qwend version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("qwend", version)
		},
	}
}
