package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/cliconfig"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/watch"
	"github.com/gmorks/ComfyUI-SendToDiscord/internal/webhook"
	pkglog "github.com/gmorks/ComfyUI-SendToDiscord/pkg/log"
)

const longHelp = `
Send images to a Discord webhook with batching, size-aware WebP compression,
and batch-to-individual fallback when an upload fails.

Files given as arguments are sent once and the command exits. With --watch,
the command monitors a directory and delivers image files as they appear,
until interrupted.

Configuration comes from flags, SENDTODISCORD_* environment variables, or a
TOML config file ([Discord] and [Fallback] sections), in that precedence.
`

var exampleUsage = strings.TrimSpace(`
  sendtodiscord --webhook-url https://discord.com/api/webhooks/... image.png
  sendtodiscord --batch --batch-size 5 out/*.png
  sendtodiscord --config config.toml --watch ./output --batch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "sendtodiscord [files...]",
		Short:   "Send images to a Discord webhook with batching and compression fallback",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.WatchDir == "" && len(args) == 0 {
				return fmt.Errorf("no input files (pass image paths or use --watch)")
			}

			// Log configuration with the webhook URL masked; it embeds a token.
			logCfg := cfg
			if len(logCfg.WebhookURL) > 0 {
				logCfg.WebhookURL = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			logger := pkglog.NewZerologAdapterWithLogger(log)
			sender := webhook.NewHTTPSender(cfg.WebhookURL, &http.Client{}, logger)
			deliverer, err := delivery.New(cfg.DeliveryConfig(), sender, delivery.WithLogger(logger))
			if err != nil {
				return err
			}

			if cfg.WatchDir != "" {
				return runWatch(cfg, deliverer, logger)
			}
			return runSend(cmd.Context(), cfg, deliverer, args, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ./config.toml or ~/.sendtodiscord/config.toml)")
	root.Flags().StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "Discord webhook URL")
	root.Flags().BoolVar(&cfg.Batch, "batch", cfg.Batch, "queue files and send them in batches")
	root.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "queue length that triggers a batch flush")
	root.Flags().BoolVar(&cfg.EnableFallback, "fallback", cfg.EnableFallback, "send items individually when a batch fails")
	root.Flags().BoolVar(&cfg.EnableCompression, "compression", cfg.EnableCompression, "compress files above the size threshold before sending")
	root.Flags().IntVar(&cfg.CompressionQuality, "quality", cfg.CompressionQuality, "WebP compression quality (0-100)")
	root.Flags().Float64Var(&cfg.MaxFileSizeMB, "max-file-size", cfg.MaxFileSizeMB, "per-file size threshold in MB above which compression kicks in")
	root.Flags().StringVar(&cfg.WatchDir, "watch", cfg.WatchDir, "watch a directory and deliver images as they appear")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("sendtodiscord")
		os.Exit(1)
	}
}

// runSend delivers the argument files and exits.
func runSend(ctx context.Context, cfg cliconfig.Config, deliverer *delivery.Deliverer, files []string, logger pkglog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, path := range files {
		if !cliconfig.FileExists(path) {
			return fmt.Errorf("no such file: %s", path)
		}
		item := delivery.Item{Path: path, Filename: filepath.Base(path)}
		if cfg.Batch {
			deliverer.Enqueue(ctx, item)
		} else {
			deliverer.Deliver(ctx, item)
		}
	}
	if cfg.Batch {
		deliverer.Flush(ctx)
	}

	logger.Info("done", pkglog.String("status", deliverer.LastStatus()))
	return nil
}

// runWatch monitors the configured directory until SIGINT/SIGTERM.
func runWatch(cfg cliconfig.Config, deliverer *delivery.Deliverer, logger pkglog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(cfg.WatchDir, deliverer, cfg.Batch, watch.WithLogger(logger))
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info("watch stopped", pkglog.String("status", deliverer.LastStatus()))
	return nil
}
