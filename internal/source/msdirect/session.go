// Package msdirect resolves direct Windows 11 ISO links by driving the
// Microsoft download page the way a human session would.
package msdirect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DownloadPageURL is the fixed page the session interacts with.
const DownloadPageURL = "https://www.microsoft.com/en-us/software-download/windows11"

// Selectors and option values the page exposes. These are an unversioned
// contract with a third party and can break without notice.
const (
	editionSelector  = "#product-edition"
	editionValue     = "3262" // Windows 11 multi-edition ISO
	editionSubmit    = "#submit-product-edition"
	languageSelector = "#product-languages"
	languageIndex    = 1 // index 0 is the "Select one" placeholder
	languageSubmit   = "#submit-sku"
	downloadAnchor   = "a.btn.btn-primary"
	downloadText     = "64-bit"
)

// ErrNoDownloadLink is returned when the download control carries no URL.
var ErrNoDownloadLink = errors.New("download button has no link")

// Driver is the minimal browser surface the session needs. The production
// implementation is chromedp; tests inject a fake honoring the same step
// contract.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, selector string) error
	SelectValue(ctx context.Context, selector, value string) error
	SelectIndex(ctx context.Context, selector string, index int) error
	Click(ctx context.Context, selector string) error
	OptionCount(ctx context.Context, selector string) (int, error)
	AttrByText(ctx context.Context, selector, text, attr string) (string, error)
	Close() error
}

// step enumerates the linear states of the extraction protocol.
type step int

const (
	stepNavigate step = iota
	stepAwaitEdition
	stepSelectEdition
	stepSubmitEdition
	stepAwaitLanguages
	stepSelectLanguage
	stepSubmitLanguage
	stepAwaitDownload
	stepExtract
	stepValidate
	stepDone
)

func (s step) String() string {
	names := [...]string{
		"navigate", "await_edition", "select_edition", "submit_edition",
		"await_languages", "select_language", "submit_language",
		"await_download", "extract", "validate", "done",
	}
	if int(s) < len(names) {
		return names[int(s)]
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Session runs the extraction protocol once against a driver. Any failure
// aborts the whole session; there are no retries inside it.
type Session struct {
	driver Driver
	pacer  *Pacer
	log    *zap.Logger

	url string
}

// NewSession builds a session over an already-launched driver.
func NewSession(driver Driver, pacer *Pacer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{driver: driver, pacer: pacer, log: log}
}

// Run walks the states in order and returns the resolved download URL.
func (s *Session) Run(ctx context.Context) (string, error) {
	transitions := map[step]func(context.Context) (step, error){
		stepNavigate:       s.navigate,
		stepAwaitEdition:   s.awaitEdition,
		stepSelectEdition:  s.selectEdition,
		stepSubmitEdition:  s.submitEdition,
		stepAwaitLanguages: s.awaitLanguages,
		stepSelectLanguage: s.selectLanguage,
		stepSubmitLanguage: s.submitLanguage,
		stepAwaitDownload:  s.awaitDownload,
		stepExtract:        s.extract,
		stepValidate:       s.validate,
	}
	for current := stepNavigate; current != stepDone; {
		next, err := transitions[current](ctx)
		if err != nil {
			return "", fmt.Errorf("%s: %w", current, err)
		}
		current = next
	}
	return s.url, nil
}

func (s *Session) navigate(ctx context.Context) (step, error) {
	s.log.Info("Navigating to download page", zap.String("url", DownloadPageURL))
	if err := s.driver.Navigate(ctx, DownloadPageURL); err != nil {
		return 0, err
	}
	return stepAwaitEdition, nil
}

func (s *Session) awaitEdition(ctx context.Context) (step, error) {
	if err := s.driver.WaitReady(ctx, editionSelector); err != nil {
		return 0, err
	}
	// Give the page's own script time to attach its handlers before we fire
	// the selection.
	s.pacer.PauseBetween(ctx, 500*time.Millisecond, 1500*time.Millisecond)
	return stepSelectEdition, nil
}

func (s *Session) selectEdition(ctx context.Context) (step, error) {
	s.log.Debug("Selecting multi-edition ISO", zap.String("value", editionValue))
	if err := s.driver.SelectValue(ctx, editionSelector, editionValue); err != nil {
		return 0, err
	}
	s.pacer.PauseBetween(ctx, 500*time.Millisecond, time.Second)
	return stepSubmitEdition, nil
}

func (s *Session) submitEdition(ctx context.Context) (step, error) {
	if err := s.driver.Click(ctx, editionSubmit); err != nil {
		return 0, err
	}
	// The confirm triggers an async request that populates the language
	// control; pace long enough for it to land.
	s.pacer.PauseBetween(ctx, 2*time.Second, 4*time.Second)
	return stepAwaitLanguages, nil
}

func (s *Session) awaitLanguages(ctx context.Context) (step, error) {
	if err := s.driver.WaitReady(ctx, languageSelector); err != nil {
		return 0, err
	}
	if n, err := s.driver.OptionCount(ctx, languageSelector); err == nil {
		s.log.Info("Language options available", zap.Int("count", n))
	}
	return stepSelectLanguage, nil
}

func (s *Session) selectLanguage(ctx context.Context) (step, error) {
	// Index 1 is English International.
	if err := s.driver.SelectIndex(ctx, languageSelector, languageIndex); err != nil {
		return 0, err
	}
	s.pacer.PauseBetween(ctx, 500*time.Millisecond, time.Second)
	return stepSubmitLanguage, nil
}

func (s *Session) submitLanguage(ctx context.Context) (step, error) {
	if err := s.driver.Click(ctx, languageSubmit); err != nil {
		return 0, err
	}
	// Server-side link generation.
	s.pacer.PauseBetween(ctx, 2*time.Second, 4*time.Second)
	return stepAwaitDownload, nil
}

func (s *Session) awaitDownload(ctx context.Context) (step, error) {
	if err := s.driver.WaitReady(ctx, downloadAnchor); err != nil {
		return 0, err
	}
	return stepExtract, nil
}

func (s *Session) extract(ctx context.Context) (step, error) {
	// The page can also show an "Installation Assistant" button with the
	// same class; the 64-bit text picks the ISO link.
	href, err := s.driver.AttrByText(ctx, downloadAnchor, downloadText, "href")
	if err != nil {
		return 0, err
	}
	s.url = href
	return stepValidate, nil
}

func (s *Session) validate(_ context.Context) (step, error) {
	if s.url == "" {
		return 0, ErrNoDownloadLink
	}
	if !strings.Contains(strings.ToLower(s.url), ".iso") {
		s.log.Warn("Download URL does not contain .iso; link may be parametrized",
			zap.String("url", s.url))
	}
	s.log.Info("Extracted direct download link")
	return stepDone, nil
}
