// Package uupdump polls the UUP Dump build-listing API for Windows 11
// releases.
package uupdump

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/XXcipherX/tiny11-automated/internal/metrics"
	"github.com/XXcipherX/tiny11-automated/internal/release"
)

// SourceName tags releases produced by this adapter.
const SourceName = "uupdump"

// DefaultBaseURL is the public listing API endpoint.
const DefaultBaseURL = "https://api.uupdump.net"

// Config controls the listing client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RPS caps outbound requests; zero disables the limiter.
	RPS float64
	// MaxResults bounds how many listing entries are considered per check.
	MaxResults int
}

// Client implements source.Source against the listing API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
	now        func() time.Time
}

// New builds a listing client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 30
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		log:        log,
		now:        time.Now,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return SourceName }

// listResponse mirrors the API envelope. Builds is kept raw because the API
// serves it as either a list or a keyed mapping.
type listResponse struct {
	Response struct {
		Builds json.RawMessage `json:"builds"`
	} `json:"response"`
}

// buildDescriptor is one listing entry.
type buildDescriptor struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
	Arch  string `json:"arch"`
	Build string `json:"build"`
}

// Check fetches the listing and converts matching entries into candidate
// releases.
func (c *Client) Check(ctx context.Context) ([]release.Release, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	descriptors, err := c.fetchListing(ctx)
	if err != nil {
		return nil, err
	}
	if len(descriptors) > c.cfg.MaxResults {
		descriptors = descriptors[:c.cfg.MaxResults]
	}

	releases := make([]release.Release, 0, len(descriptors))
	for _, b := range descriptors {
		if !strings.Contains(b.Title, "Windows 11") || b.Arch != "amd64" {
			continue
		}
		releases = append(releases, c.toRelease(b))
	}
	c.log.Info("Listing check complete",
		zap.Int("entries", len(descriptors)),
		zap.Int("candidates", len(releases)))
	return releases, nil
}

func (c *Client) fetchListing(ctx context.Context) ([]buildDescriptor, error) {
	endpoint := fmt.Sprintf("%s/listid.php?%s", c.cfg.BaseURL, url.Values{
		"search":     {"Windows 11"},
		"sortByDate": {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveListingRequest(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var envelope listResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return c.normalizeBuilds(envelope.Response.Builds), nil
}

// normalizeBuilds accepts the two shapes the API serves for builds (a list
// or a keyed mapping) and flattens both into one ordered slice. Any other
// shape is a recoverable empty result.
func (c *Client) normalizeBuilds(raw json.RawMessage) []buildDescriptor {
	if len(raw) == 0 {
		return nil
	}

	var asList []buildDescriptor
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList
	}

	var asMap map[string]buildDescriptor
	if err := json.Unmarshal(raw, &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]buildDescriptor, 0, len(asMap))
		for _, k := range keys {
			out = append(out, asMap[k])
		}
		return out
	}

	c.log.Warn("Unexpected shape for listing builds field")
	return nil
}

func (c *Client) toRelease(b buildDescriptor) release.Release {
	id := b.UUID
	if id == "" {
		id = uuid.NewString()
	}
	buildNumber := b.Build
	if buildNumber == "" {
		buildNumber = "Unknown"
	}
	channel := release.ChannelRetail
	if strings.Contains(b.Title, "Insider") {
		channel = release.ChannelInsider
	}
	return release.Release{
		BuildID:      id,
		BuildNumber:  buildNumber,
		Version:      release.ResolveVersion(b.Title, buildNumber),
		Title:        b.Title,
		ISOURL:       fmt.Sprintf("https://uupdump.net/download.php?id=%s&pack=en-us&edition=professional", id),
		DetectedAt:   c.now().UTC(),
		Architecture: b.Arch,
		Channel:      channel,
		Language:     "en-us",
	}
}
