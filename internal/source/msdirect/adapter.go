package msdirect

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// SourceName tags releases produced by this adapter.
const SourceName = "msdirect"

var (
	urlVersionRE = regexp.MustCompile(`(\d{2}H\d)`)
	urlBuildRE   = regexp.MustCompile(`(\d{5}\.\d+)`)
)

// Config controls the direct-extraction adapter.
type Config struct {
	Headless bool
	Timeout  time.Duration
}

// Adapter resolves the current direct ISO link by running one browser
// extraction session per detection cycle.
type Adapter struct {
	cfg     Config
	rotator *Rotator
	pacer   *Pacer
	log     *zap.Logger

	now       func() time.Time
	newDriver func(cfg ChromeConfig) (Driver, error)
}

// New builds the adapter. The rotator is shared with the rest of the process
// so back-to-back sessions never reuse an agent.
func New(cfg Config, rotator *Rotator, pacer *Pacer, log *zap.Logger) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		cfg:     cfg,
		rotator: rotator,
		pacer:   pacer,
		log:     log,
		now:     time.Now,
		newDriver: func(dc ChromeConfig) (Driver, error) {
			return NewChromeDriver(dc)
		},
	}
}

// Name implements source.Source.
func (a *Adapter) Name() string { return SourceName }

// Check runs one extraction session and converts the resolved URL into a
// candidate release. A session failure surfaces as an error; the engine
// treats it as zero candidates from this source.
func (a *Adapter) Check(ctx context.Context) ([]release.Release, error) {
	agent := a.rotator.Next()
	a.log.Debug("Launching extraction session", zap.String("user_agent", agent))

	driver, err := a.newDriver(ChromeConfig{
		Headless:  a.cfg.Headless,
		UserAgent: agent,
		Timeout:   a.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			a.log.Warn("Failed to close browser", zap.Error(cerr))
		}
	}()

	url, err := NewSession(driver, a.pacer, a.log).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("extraction session: %w", err)
	}
	return []release.Release{a.toRelease(url)}, nil
}

func (a *Adapter) toRelease(url string) release.Release {
	version := "Latest"
	if m := urlVersionRE.FindStringSubmatch(url); m != nil {
		version = m[1]
	}
	build := "Latest"
	if m := urlBuildRE.FindStringSubmatch(url); m != nil {
		build = m[1]
	}
	now := a.now().UTC()
	return release.Release{
		// Version plus calendar day; this source yields at most one
		// current link per check.
		BuildID:      fmt.Sprintf("%s-%s-%s", SourceName, strings.ToLower(version), now.Format("20060102")),
		BuildNumber:  build,
		Version:      version,
		Title:        "Windows 11 " + version,
		ISOURL:       url,
		DetectedAt:   now,
		Architecture: "amd64",
		Channel:      release.ChannelRetail,
		Language:     "en-us",
	}
}
