package msdirect

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeConfig controls the chromedp-backed driver.
type ChromeConfig struct {
	Headless  bool
	UserAgent string
	// Timeout bounds every individual wait and interaction.
	Timeout time.Duration
}

// ChromeDriver implements Driver on a headless Chrome tab via chromedp. Each
// driver owns one isolated browser context and is used for exactly one
// session.
type ChromeDriver struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	userAgent     string
}

// NewChromeDriver launches an isolated browser context carrying the given
// user agent.
func NewChromeDriver(cfg ChromeConfig) (*ChromeDriver, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	d := &ChromeDriver{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       cfg.Timeout,
		userAgent:     cfg.UserAgent,
	}
	if err := d.run(context.Background(), d.networkSetup()); err != nil {
		d.Close() //nolint:errcheck
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	return d, nil
}

// Close releases the browser context unconditionally.
func (d *ChromeDriver) Close() error {
	d.browserCancel()
	d.allocCancel()
	return nil
}

func (d *ChromeDriver) networkSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if d.userAgent != "" {
			if err := emulation.SetUserAgentOverride(d.userAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (d *ChromeDriver) run(parent context.Context, actions ...chromedp.Action) error {
	ctx := d.browserCtx
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	stop := forwardCancel(parent, cancel)
	defer stop()
	if err := chromedp.Run(ctx, actions...); err != nil {
		return fmt.Errorf("chromedp run: %w", err)
	}
	return nil
}

// Navigate loads the page and waits for the DOM to be parsed; resources keep
// loading afterwards.
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitReady blocks until the selector matches an element in the DOM.
func (d *ChromeDriver) WaitReady(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// SelectValue sets a <select> to the option with the given value and fires
// the change event the page's script listens for.
func (d *ChromeDriver) SelectValue(ctx context.Context, selector, value string) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) { return false; }
		el.value = %q;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, selector, value)
	return d.evalBool(ctx, js, selector)
}

// SelectIndex sets a <select> to the option at the given index.
func (d *ChromeDriver) SelectIndex(ctx context.Context, selector string, index int) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el || el.options.length <= %d) { return false; }
		el.selectedIndex = %d;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, selector, index, index)
	return d.evalBool(ctx, js, selector)
}

// Click clicks the first element matching the selector.
func (d *ChromeDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// OptionCount returns the number of <option> children under the selector.
func (d *ChromeDriver) OptionCount(ctx context.Context, selector string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector+" option")
	if err := d.run(ctx, chromedp.Evaluate(js, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

// AttrByText returns attr of the first element matching selector whose
// visible text contains text. An empty string means no element matched.
func (d *ChromeDriver) AttrByText(ctx context.Context, selector, text, attr string) (string, error) {
	var out string
	js := fmt.Sprintf(`(() => {
		for (const el of document.querySelectorAll(%q)) {
			if ((el.textContent || '').includes(%q)) {
				return el.getAttribute(%q) || '';
			}
		}
		return '';
	})()`, selector, text, attr)
	if err := d.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return "", err
	}
	return out, nil
}

func (d *ChromeDriver) evalBool(ctx context.Context, js, selector string) error {
	var ok bool
	if err := d.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("selector %q not interactable", selector)
	}
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
