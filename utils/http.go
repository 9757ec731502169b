package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"furniture-extractor/internal/types"
)

// HTTPClient is a static (non-rendering) session. It fetches pages with plain
// HTTP requests and logs in by posting the vendor's login form. Cookies persist
// for the life of the client.
type HTTPClient struct {
	client   *resty.Client
	config   *types.Config
	logger   types.Logger
	limiter  *rate.Limiter
	vendorID string

	mu sync.Mutex
}

// NewHTTPClient creates a new HTTP session for one vendor run
func NewHTTPClient(config *types.Config, vendorID string, logger types.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(config.Session.Timeout)
	client.SetHeader("User-Agent", config.Session.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")

	return &HTTPClient{
		client:   client,
		config:   config,
		logger:   logger,
		limiter:  NewLimiter(config.Session.RequestDelay),
		vendorID: vendorID,
	}, nil
}

// SetTransport replaces the underlying transport. Tests use it with httpmock.
func (h *HTTPClient) SetTransport(transport http.RoundTripper) {
	h.client.SetTransport(transport)
}

// Get performs a rate-limited GET request and returns the body
func (h *HTTPClient) Get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	h.logger.Debugf("Making request to %s", pageURL)
	res, err := h.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode())
	}

	h.logger.Debugf("Successfully retrieved %d bytes from %s", len(res.Body()), pageURL)
	return res.Body(), nil
}

// Load implements types.Session
func (h *HTTPClient) Load(ctx context.Context, pageURL string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	body, err := h.Get(ctx, pageURL)
	if err != nil {
		return "", types.NewRenderFailure(pageURL, err)
	}
	return string(body), nil
}

// Login implements types.Session. It reads the login page so hidden fields
// (CSRF tokens and the like) are posted back, submits the credentials and
// checks that the final response is no longer the login page.
func (h *HTTPClient) Login(ctx context.Context, form types.LoginForm, cred types.Credential) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	authError := func(err error) error {
		return types.AuthError{Vendor: h.vendorID, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Session.LoginTimeout)
	defer cancel()

	loginURL, err := url.Parse(form.URL)
	if err != nil {
		return authError(fmt.Errorf("invalid login url: %w", err))
	}

	body, err := h.Get(ctx, form.URL)
	if err != nil {
		return authError(fmt.Errorf("login page: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return authError(fmt.Errorf("parse login page: %w", err))
	}

	usernameField, passwordField := form.UsernameField, form.PasswordField
	if usernameField == "" {
		usernameField = "username"
	}
	if passwordField == "" {
		passwordField = "password"
	}

	action := form.URL
	fields := map[string]string{}
	loginForm := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(fmt.Sprintf("input[name=%q]", passwordField)).Length() > 0
	}).First()
	if loginForm.Length() > 0 {
		if href, ok := loginForm.Attr("action"); ok {
			if resolved := ResolveURL(href, loginURL); resolved != "" {
				action = resolved
			}
		}
		loginForm.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			value, _ := s.Attr("value")
			fields[name] = value
		})
	}
	fields[usernameField] = cred.Username
	fields[passwordField] = cred.Password

	if err := h.limiter.Wait(ctx); err != nil {
		return authError(err)
	}
	res, err := h.client.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(action)
	if err != nil {
		return authError(fmt.Errorf("submit login form: %w", err))
	}
	if res.StatusCode() >= http.StatusBadRequest {
		return authError(fmt.Errorf("login rejected with status %d", res.StatusCode()))
	}

	final := res.RawResponse.Request.URL
	if SameDocument(final, loginURL) {
		return authError(fmt.Errorf("still on login page after submit"))
	}

	h.logger.Infof("Logged in to %s as %s", h.vendorID, cred.Username)
	return nil
}

// Close implements types.Session
func (h *HTTPClient) Close() {
	h.client.GetClient().CloseIdleConnections()
}

// NewLimiter paces requests to one per delay; a non-positive delay disables pacing
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// SameDocument reports whether a and b address the same host and path, ignoring query and fragment
func SameDocument(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Hostname(), b.Hostname()) &&
		strings.TrimSuffix(a.Path, "/") == strings.TrimSuffix(b.Path, "/")
}
