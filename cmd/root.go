// Package cmd defines and implements the CLI commands for the releasewatcher
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/clock"
	"github.com/XXcipherX/tiny11-automated/internal/config"
	"github.com/XXcipherX/tiny11-automated/internal/detector"
	"github.com/XXcipherX/tiny11-automated/internal/logging"
	"github.com/XXcipherX/tiny11-automated/internal/metrics"
	"github.com/XXcipherX/tiny11-automated/internal/publisher"
	pspublisher "github.com/XXcipherX/tiny11-automated/internal/publisher/pubsub"
	"github.com/XXcipherX/tiny11-automated/internal/release"
	"github.com/XXcipherX/tiny11-automated/internal/source"
	"github.com/XXcipherX/tiny11-automated/internal/source/msdirect"
	"github.com/XXcipherX/tiny11-automated/internal/source/uupdump"
	"github.com/XXcipherX/tiny11-automated/internal/track"
)

var cfgFile string

// app bundles the wired services the subcommands run against.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	store  track.Store
	engine *detector.Engine

	closers []func() error
}

// Close releases pools and connections in reverse wiring order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// newApp is a variable so tests can substitute a fake factory.
var newApp = buildApp

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	a := &app{cfg: cfg, log: log}

	a.store, err = buildStore(ctx, cfg, log, a)
	if err != nil {
		return nil, err
	}

	pub, err := buildPublisher(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	sources, err := buildSources(cfg, log)
	if err != nil {
		return nil, err
	}

	a.engine = detector.New(
		detector.Config{Cooldown: cfg.Cooldown()},
		sources,
		a.store,
		release.NewBuildComparator(log),
		clock.System{},
		pub,
		log,
	)
	return a, nil
}

func buildStore(ctx context.Context, cfg config.Config, log *zap.Logger, a *app) (track.Store, error) {
	switch cfg.Store.Provider {
	case config.StorePostgres:
		st, err := track.NewPostgresStore(ctx, track.PostgresConfig{DSN: cfg.Store.DSN}, log)
		if err != nil {
			return nil, fmt.Errorf("connect tracking store: %w", err)
		}
		a.closers = append(a.closers, func() error {
			st.Close()
			return nil
		})
		return st, nil
	default:
		st, err := track.NewFileStore(cfg.Store.Path, log)
		if err != nil {
			return nil, fmt.Errorf("open tracking file: %w", err)
		}
		return st, nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config, a *app) (publisher.Publisher, error) {
	if cfg.Publisher.Provider != config.PublisherPubSub {
		return nil, nil
	}
	pub, closer, err := pspublisher.Connect(ctx, cfg.Publisher.ProjectID, cfg.Publisher.TopicName)
	if err != nil {
		return nil, fmt.Errorf("connect publisher: %w", err)
	}
	a.closers = append(a.closers, closer)
	return pub, nil
}

func buildSources(cfg config.Config, log *zap.Logger) ([]source.Source, error) {
	var sources []source.Source
	if cfg.Browser.Enabled {
		rotator, err := msdirect.NewRotator(msdirect.DefaultUserAgents)
		if err != nil {
			return nil, fmt.Errorf("init agent rotator: %w", err)
		}
		pacer := msdirect.NewPacer(
			time.Duration(cfg.Browser.MinDelayMs)*time.Millisecond,
			time.Duration(cfg.Browser.MaxDelayMs)*time.Millisecond,
		)
		sources = append(sources, msdirect.New(msdirect.Config{
			Headless: cfg.Browser.Headless,
			Timeout:  cfg.BrowserTimeout(),
		}, rotator, pacer, log))
	}
	if cfg.Listing.Enabled {
		sources = append(sources, uupdump.New(uupdump.Config{
			BaseURL:    cfg.Listing.BaseURL,
			Timeout:    cfg.ListingTimeout(),
			RPS:        cfg.Listing.RPS,
			MaxResults: cfg.Listing.MaxResults,
		}, log))
	}
	return sources, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "releasewatcher",
		Short: "Watches for new Windows 11 ISO releases.",
		Long: `releasewatcher polls Microsoft's download page and the public build
listing API for new Windows 11 releases, reconciles what it finds against a
persistent tracking set, and emits the automation outputs downstream build
pipelines consume.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults apply when unset)")

	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
