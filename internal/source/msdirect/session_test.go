package msdirect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDriver records calls and honors the same step contract as the real
// chromedp driver.
type fakeDriver struct {
	calls       []string
	href        string
	failOnWait  string
	failOnClick string
	closed      bool
	options     int
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.calls = append(d.calls, "navigate "+url)
	return nil
}

func (d *fakeDriver) WaitReady(_ context.Context, selector string) error {
	d.calls = append(d.calls, "wait "+selector)
	if selector == d.failOnWait {
		return context.DeadlineExceeded
	}
	return nil
}

func (d *fakeDriver) SelectValue(_ context.Context, selector, value string) error {
	d.calls = append(d.calls, "select "+selector+"="+value)
	return nil
}

func (d *fakeDriver) SelectIndex(_ context.Context, selector string, index int) error {
	d.calls = append(d.calls, "selectIndex "+selector)
	if index != 1 {
		return errors.New("unexpected index")
	}
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	d.calls = append(d.calls, "click "+selector)
	if selector == d.failOnClick {
		return errors.New("click failed")
	}
	return nil
}

func (d *fakeDriver) OptionCount(_ context.Context, selector string) (int, error) {
	d.calls = append(d.calls, "count "+selector)
	return d.options, nil
}

func (d *fakeDriver) AttrByText(_ context.Context, selector, text, attr string) (string, error) {
	d.calls = append(d.calls, "attr "+selector+" ~"+text+" @"+attr)
	return d.href, nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

func fastPacer() *Pacer {
	p := NewPacer(0, 0)
	p.sleep = func(context.Context, time.Duration) {}
	return p
}

func TestSessionHappyPath(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{href: "https://software.download.prss.microsoft.com/Win11_24H2_EnglishInternational_x64.iso?t=abc", options: 39}

	url, err := NewSession(driver, fastPacer(), zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, driver.href, url)

	want := []string{
		"navigate " + DownloadPageURL,
		"wait #product-edition",
		"select #product-edition=3262",
		"click #submit-product-edition",
		"wait #product-languages",
		"count #product-languages",
		"selectIndex #product-languages",
		"click #submit-sku",
		"wait a.btn.btn-primary",
		"attr a.btn.btn-primary ~64-bit @href",
	}
	require.Equal(t, want, driver.calls)
}

func TestSessionParametrizedLinkIsAccepted(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{href: "https://example.com/download?sku=12345"}

	url, err := NewSession(driver, fastPacer(), zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, driver.href, url)
}

func TestSessionEmptyLinkFails(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{href: ""}

	_, err := NewSession(driver, fastPacer(), zap.NewNop()).Run(context.Background())
	require.ErrorIs(t, err, ErrNoDownloadLink)
}

func TestSessionAbortsOnWaitTimeout(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{failOnWait: "#product-languages"}

	_, err := NewSession(driver, fastPacer(), zap.NewNop()).Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "await_languages")
	// Nothing past the failed wait ran.
	for _, call := range driver.calls {
		require.False(t, strings.HasPrefix(call, "selectIndex"), "session kept going after timeout")
	}
}

func TestSessionAbortsOnInteractionError(t *testing.T) {
	t.Parallel()
	driver := &fakeDriver{failOnClick: "#submit-sku", href: "https://example.com/x.iso"}

	_, err := NewSession(driver, fastPacer(), zap.NewNop()).Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "submit_language")
}
