package utils

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"furniture-extractor/internal/types"
)

// BrowserClient is a headless-browser session: one browser process and one tab
// for the whole vendor run. Navigation on the tab is serialized.
type BrowserClient struct {
	config   *types.Config
	logger   types.Logger
	limiter  *rate.Limiter
	vendorID string

	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	mu sync.Mutex
}

// NewBrowserClient starts a browser for one vendor run. The browser outlives
// cancellation of ctx and is released by Close.
func NewBrowserClient(ctx context.Context, config *types.Config, vendorID string, logger types.Logger) (*BrowserClient, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(config.Session.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	if config.Session.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}),
		chromedp.WithErrorf(logger.Debugf),
	)

	b := &BrowserClient{
		config:      config,
		logger:      logger,
		limiter:     NewLimiter(config.Session.RequestDelay),
		vendorID:    vendorID,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}

	startCtx, cancel := context.WithTimeout(tabCtx, config.Session.Timeout)
	defer cancel()
	err := chromedp.Run(startCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
	)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return b, nil
}

// run executes actions on the tab with a per-call timeout. Cancelling ctx aborts the call.
func (b *BrowserClient) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(callCtx, actions...)
}

// Load implements types.Session. It returns the outer HTML once the body is
// ready and the settle delay for client-side rendering has passed.
func (b *BrowserClient) Load(ctx context.Context, pageURL string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	var html string
	err := b.run(ctx, b.config.Session.Timeout,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.config.Session.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", types.NewRenderFailure(pageURL, err)
	}

	b.logger.Debugf("Rendered %s in %v (%d bytes)", pageURL, time.Since(start), len(html))
	return html, nil
}

// Login implements types.Session: fill both fields, submit, then wait until the
// tab has navigated away from the login URL.
func (b *BrowserClient) Login(ctx context.Context, form types.LoginForm, cred types.Credential) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	loginURL, err := url.Parse(form.URL)
	if err != nil {
		return types.AuthError{Vendor: b.vendorID, Err: fmt.Errorf("invalid login url: %w", err)}
	}

	err = b.run(ctx, b.config.Session.LoginTimeout,
		chromedp.Navigate(form.URL),
		chromedp.WaitVisible(form.UsernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(form.UsernameSelector, cred.Username, chromedp.ByQuery),
		chromedp.SendKeys(form.PasswordSelector, cred.Password, chromedp.ByQuery),
		chromedp.Click(form.SubmitSelector, chromedp.ByQuery),
		waitForNavigationAway(loginURL),
	)
	if err != nil {
		return types.AuthError{Vendor: b.vendorID, Err: err}
	}

	b.logger.Infof("Logged in to %s as %s", b.vendorID, cred.Username)
	return nil
}

func waitForNavigationAway(loginURL *url.URL) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			var location string
			if err := chromedp.Location(&location).Do(ctx); err != nil {
				return err
			}
			current, err := url.Parse(location)
			if err == nil && !SameDocument(current, loginURL) {
				return nil
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("still on login page: %w", ctx.Err())
			case <-ticker.C:
			}
		}
	})
}

// Close implements types.Session
func (b *BrowserClient) Close() {
	if b.tabCancel != nil {
		b.tabCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}
