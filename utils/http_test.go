package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-extractor/internal/types"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.Session.RequestDelay = 0
	config.Session.Timeout = 5 * time.Second
	config.Session.LoginTimeout = 5 * time.Second
	config.Session.UseHeadlessBrowser = false
	return config
}

func newTestClient(t *testing.T, config *types.Config) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(config, "acme", logrus.New())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNewHTTPClient(t *testing.T) {
	config := testConfig()
	client := newTestClient(t, config)

	assert.Equal(t, config, client.config)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.limiter)
	assert.Equal(t, "acme", client.vendorID)
}

func TestHTTPClient_Load_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, types.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>test response</body></html>"))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	html, err := client.Load(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "test response")
}

func TestHTTPClient_Load_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	_, err := client.Load(context.Background(), server.URL)
	require.Error(t, err)
	var renderErr types.RenderError
	assert.True(t, errors.As(err, &renderErr))
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}

func TestHTTPClient_Load_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	config := testConfig()
	config.Session.Timeout = 50 * time.Millisecond
	client := newTestClient(t, config)

	_, err := client.Load(context.Background(), server.URL)
	require.Error(t, err)
	var timeout types.RenderTimeout
	assert.True(t, errors.As(err, &timeout), "got %v", err)
}

func TestHTTPClient_Get_ContextCancelled(t *testing.T) {
	config := testConfig()
	config.Session.RequestDelay = time.Hour
	client := newTestClient(t, config)

	// first token is free; the second wait must observe the cancellation
	require.True(t, client.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://example.com")
	assert.Error(t, err)
}

func TestHTTPClient_MockTransport(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://vendor.test/products/lamp",
		httpmock.NewStringResponder(200, "<html><h1>Lamp</h1></html>"))
	transport.RegisterResponder("GET", "https://vendor.test/products/gone",
		httpmock.NewStringResponder(500, "oops"))

	client := newTestClient(t, testConfig())
	client.SetTransport(transport)

	html, err := client.Load(context.Background(), "https://vendor.test/products/lamp")
	require.NoError(t, err)
	assert.Contains(t, html, "Lamp")

	_, err = client.Load(context.Background(), "https://vendor.test/products/gone")
	assert.Error(t, err)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func loginServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	loginPage := `<html><body>
		<form id="login" action="/account/login" method="post">
			<input type="hidden" name="csrf" value="tok-123">
			<input name="email"><input name="pass" type="password">
		</form></body></html>`
	mux.HandleFunc("/account/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.NoError(t, r.ParseForm())
			if r.Form.Get("csrf") == "tok-123" && r.Form.Get("email") == "buyer" && r.Form.Get("pass") == "right" {
				http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
				http.Redirect(w, r, "/account", http.StatusFound)
				return
			}
		}
		w.Write([]byte(loginPage))
	})
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "ok" {
			http.Redirect(w, r, "/account/login", http.StatusFound)
			return
		}
		w.Write([]byte("<html>welcome</html>"))
	})
	return httptest.NewServer(mux)
}

func TestHTTPClient_Login(t *testing.T) {
	server := loginServer(t)
	defer server.Close()

	form := types.LoginForm{
		URL:           server.URL + "/account/login",
		UsernameField: "email",
		PasswordField: "pass",
	}

	t.Run("success keeps the session cookie", func(t *testing.T) {
		client := newTestClient(t, testConfig())
		err := client.Login(context.Background(), form, types.Credential{Username: "buyer", Password: "right"})
		require.NoError(t, err)

		html, err := client.Load(context.Background(), server.URL+"/account")
		require.NoError(t, err)
		assert.Contains(t, html, "welcome")
	})

	t.Run("wrong password is an auth error", func(t *testing.T) {
		client := newTestClient(t, testConfig())
		err := client.Login(context.Background(), form, types.Credential{Username: "buyer", Password: "wrong"})
		require.Error(t, err)
		var authErr types.AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, "acme", authErr.Vendor)
	})
}

func TestSessionFactory_Static(t *testing.T) {
	factory := NewSessionFactory(testConfig(), logrus.New())
	session, err := factory(context.Background(), types.VendorProfile{ID: "acme"})
	require.NoError(t, err)
	defer session.Close()

	_, ok := session.(*HTTPClient)
	assert.True(t, ok)
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://acme.example/collections/lamps")

	tests := []struct {
		href string
		want string
	}{
		{href: "/products/a", want: "https://acme.example/products/a"},
		{href: "b", want: "https://acme.example/collections/b"},
		{href: "https://cdn.example/x.jpg#zoom", want: "https://cdn.example/x.jpg"},
		{href: "//cdn.example/y.jpg", want: "https://cdn.example/y.jpg"},
		{href: "mailto:a@b.c", want: ""},
		{href: "javascript:void(0)", want: ""},
		{href: "tel:123", want: ""},
		{href: "#top", want: ""},
		{href: "data:image/png;base64,AAAA", want: ""},
		{href: "  ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveURL(tt.href, base), tt.href)
	}
}

func TestRemoveDuplicateURLs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, RemoveDuplicateURLs([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, RemoveDuplicateURLs(nil))
}

func TestHostMatches(t *testing.T) {
	assert.True(t, HostMatches("https://www.acme.example/p", []string{"acme.example"}))
	assert.True(t, HostMatches("https://shop.acme.example/p", []string{"www.acme.example"}))
	assert.False(t, HostMatches("https://notacme.example/p", []string{"acme.example"}))
}

func TestSameDocument(t *testing.T) {
	a, _ := url.Parse("https://acme.example/account/login?next=/")
	b, _ := url.Parse("https://ACME.example/account/login/")
	c, _ := url.Parse("https://acme.example/account")
	assert.True(t, SameDocument(a, b))
	assert.False(t, SameDocument(a, c))
}
