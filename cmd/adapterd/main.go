package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"adapterd/internal/config"
	"adapterd/internal/httpapi"
	"adapterd/internal/llm"
	"adapterd/internal/registry"
	"adapterd/internal/serving"
	"adapterd/internal/weights"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     config.Config
	)

	root := &cobra.Command{
		Use:           "adapterd",
		Short:         "Adapter-aware LLM serving daemon",
		Long:          "adapterd keeps one base model resident and serves generations while adapters (small weight deltas) are switched at runtime.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				fileCfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = mergeConfig(fileCfg, cfg, cmd)
			}
			return runServe(cfg)
		},
	}

	fl := serve.Flags()
	fl.StringVar(&cfgPath, "config", envStr("ADAPTERD_CONFIG", ""), "Path to a YAML/TOML/JSON config file")
	fl.StringVar(&cfg.Addr, "addr", envStr("ADAPTERD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fl.StringVar(&cfg.BaseModel, "base-model", envStr("ADAPTERD_BASE_MODEL", ""), "Path to the GGUF base model file")
	fl.StringVar(&cfg.AdaptersDir, "adapters-dir", envStr("ADAPTERD_ADAPTERS_DIR", ""), "Directory to scan for *.safetensors adapter files")
	fl.StringVar(&cfg.AdapterManifest, "adapter-manifest", envStr("ADAPTERD_ADAPTER_MANIFEST", ""), "YAML manifest of adapters (name/locator pairs)")
	fl.StringVar(&cfg.DefaultAdapter, "default-adapter", envStr("ADAPTERD_DEFAULT_ADAPTER", ""), "Adapter to activate at startup (empty = base model only)")
	fl.IntVar(&cfg.MaxConcurrent, "max-concurrent", envInt("ADAPTERD_MAX_CONCURRENT", 0), "Max generations executing at once (0 = unlimited)")
	fl.IntVar(&cfg.MaxResident, "max-resident", envInt("ADAPTERD_MAX_RESIDENT", 0), "Max adapters kept loaded simultaneously (0 = unlimited)")
	fl.IntVar(&cfg.MaxWaitSec, "max-wait-sec", envInt("ADAPTERD_MAX_WAIT_SEC", 0), "Seconds a generation may wait for admission during a switch")
	fl.IntVar(&cfg.SwitchWaitSec, "switch-wait-sec", envInt("ADAPTERD_SWITCH_WAIT_SEC", 0), "Seconds a switch may wait for in-flight generations to drain")
	fl.IntVar(&cfg.LlamaCtx, "llama-ctx", envInt("ADAPTERD_LLAMA_CTX", 2048), "llama.cpp context size")
	fl.IntVar(&cfg.LlamaThreads, "llama-threads", envInt("ADAPTERD_LLAMA_THREADS", 4), "llama.cpp CPU threads")

	root.AddCommand(serve)
	return root
}

// mergeConfig overlays flag-set values on top of the file configuration.
// Flags that were explicitly changed win over the file.
func mergeConfig(file, flags config.Config, cmd *cobra.Command) config.Config {
	out := file
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("addr") || out.Addr == "" {
		out.Addr = flags.Addr
	}
	if set("base-model") || out.BaseModel == "" {
		out.BaseModel = flags.BaseModel
	}
	if set("adapters-dir") || out.AdaptersDir == "" {
		out.AdaptersDir = flags.AdaptersDir
	}
	if set("adapter-manifest") || out.AdapterManifest == "" {
		out.AdapterManifest = flags.AdapterManifest
	}
	if set("default-adapter") || out.DefaultAdapter == "" {
		out.DefaultAdapter = flags.DefaultAdapter
	}
	if set("max-concurrent") || out.MaxConcurrent == 0 {
		out.MaxConcurrent = flags.MaxConcurrent
	}
	if set("max-resident") || out.MaxResident == 0 {
		out.MaxResident = flags.MaxResident
	}
	if set("max-wait-sec") || out.MaxWaitSec == 0 {
		out.MaxWaitSec = flags.MaxWaitSec
	}
	if set("switch-wait-sec") || out.SwitchWaitSec == 0 {
		out.SwitchWaitSec = flags.SwitchWaitSec
	}
	if set("llama-ctx") || out.LlamaCtx == 0 {
		out.LlamaCtx = flags.LlamaCtx
	}
	if set("llama-threads") || out.LlamaThreads == 0 {
		out.LlamaThreads = flags.LlamaThreads
	}
	return out
}

func runServe(cfg config.Config) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if cfg.BaseModel == "" {
		logger.Fatal().Msg("--base-model is required")
	}

	core := serving.New(serving.Config{
		BaseModelPath: cfg.BaseModel,
		MaxWait:       time.Duration(cfg.MaxWaitSec) * time.Second,
		SwitchWait:    time.Duration(cfg.SwitchWaitSec) * time.Second,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxResident:   cfg.MaxResident,
		Loader:        weights.NewFileLoader(),
		Runner:        llm.NewLlamaRunner(cfg.LlamaCtx, cfg.LlamaThreads),
		Metrics:       httpapi.NewPromSink(),
		Logger:        logger.With().Str("component", "serving").Logger(),
	})
	defer core.Close()

	if err := registerAdapters(core, cfg, logger); err != nil {
		return err
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger.With().Str("component", "http").Logger())

	if cfg.DefaultAdapter != "" {
		if _, err := core.SwitchAdapter(baseCtx, cfg.DefaultAdapter); err != nil {
			logger.Fatal().Err(err).Str("adapter", cfg.DefaultAdapter).Msg("default adapter activation failed")
		}
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(core)}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("base_model", cfg.BaseModel).Msg("adapterd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// registerAdapters seeds the store from the manifest and/or directory scan.
func registerAdapters(core *serving.Core, cfg config.Config, logger zerolog.Logger) error {
	if cfg.AdapterManifest != "" {
		specs, err := registry.LoadManifest(cfg.AdapterManifest)
		if err != nil {
			return err
		}
		for _, a := range specs {
			if err := core.RegisterAdapter(a.Name, a.Locator); err != nil {
				return err
			}
		}
		logger.Info().Int("count", len(specs)).Str("manifest", cfg.AdapterManifest).Msg("adapters registered")
	}
	if cfg.AdaptersDir != "" {
		specs, err := registry.LoadDir(cfg.AdaptersDir)
		if err != nil {
			return err
		}
		n := 0
		for _, a := range specs {
			err := core.RegisterAdapter(a.Name, a.Locator)
			if err != nil {
				if serving.IsDuplicateName(err) {
					// Manifest entries win over directory discovery.
					logger.Debug().Str("adapter", a.Name).Msg("already registered, skipping")
					continue
				}
				return err
			}
			n++
		}
		logger.Info().Int("count", n).Str("dir", cfg.AdaptersDir).Msg("adapters discovered")
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
