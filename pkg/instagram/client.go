package instagram

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"igfetch/pkg/config"
	errs "igfetch/pkg/errors"
	"igfetch/pkg/headers"
	"igfetch/pkg/logger"
	"igfetch/pkg/models"
	"igfetch/pkg/ratelimit"
	"igfetch/pkg/retry"
)

const csrfCookieName = "csrftoken"

// Client is one scrape session against the target site. It owns its
// cookie jar, discovered tokens, and header profile; nothing is shared
// between sessions, so concurrent sessions need no locking.
type Client struct {
	http        tls_client.HttpClient
	profile     headers.Profile
	limiter     ratelimit.Limiter
	policy      retry.Policy
	tokens      models.SessionTokens
	initialized bool
	log         logger.Logger
}

// tlsProfileFor matches the TLS fingerprint to the browser family the
// header profile claims to be; a Chrome TLS hello under a Firefox user
// agent is exactly the inconsistency this package exists to avoid.
func tlsProfileFor(p headers.Profile) profiles.ClientProfile {
	switch {
	case strings.HasPrefix(p.Name, "firefox"):
		return profiles.Firefox_117
	case strings.HasPrefix(p.Name, "safari"):
		return profiles.Safari_16_0
	default:
		return profiles.Chrome_120
	}
}

// NewClient creates a session client. The header profile is pinned for
// the client's lifetime.
func NewClient(cfg *config.Config, profile headers.Profile, limiter ratelimit.Limiter, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewPacer(cfg.Pacing.MinDelay, cfg.Pacing.MaxDelay)
	}

	jar := tls_client.NewCookieJar()
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(cfg.HTTP.Timeout.Seconds())),
		tls_client.WithClientProfile(tlsProfileFor(profile)),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithCookieJar(jar),
	}
	if cfg.HTTP.ProxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(cfg.HTTP.ProxyURL))
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create http client", err)
	}

	return &Client{
		http:    httpClient,
		profile: profile,
		limiter: limiter,
		policy: retry.Policy{
			MaxAttempts:          cfg.Retry.MaxAttempts,
			BaseDelay:            cfg.Retry.BaseDelay,
			MaxDelay:             cfg.Retry.MaxDelay,
			ExponentialBase:      cfg.Retry.ExponentialBase,
			Jitter:               cfg.Retry.Jitter,
			RetryableStatusCodes: cfg.Retry.RetryableStatusCodes,
		},
		log: log,
	}, nil
}

// Profile returns the session's pinned header profile
func (c *Client) Profile() headers.Profile {
	return c.profile
}

// Tokens returns the current session tokens
func (c *Client) Tokens() models.SessionTokens {
	return c.tokens
}

// response is the outcome of one HTTP exchange
type response struct {
	statusCode int
	finalPath  string
	body       string
}

// get performs one paced GET. The pacing delay precedes every network
// operation and is independent of retry backoff.
func (c *Client) get(ctx context.Context, rawURL string, h http.Header) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to build request", err)
	}
	req.Header = h

	c.log.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": http.MethodGet,
		"url":    rawURL,
	})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "failed to read response body", err)
	}

	finalPath := req.URL.Path
	if resp.Request != nil && resp.Request.URL != nil {
		finalPath = resp.Request.URL.Path
	}

	c.log.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":    rawURL,
		"status": resp.StatusCode,
		"bytes":  len(body),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Newf(errs.ErrorTypeStatus,
			"server returned status %d", resp.StatusCode).WithCode(resp.StatusCode)
	}

	c.refreshCSRF()

	return &response{
		statusCode: resp.StatusCode,
		finalPath:  finalPath,
		body:       string(body),
	}, nil
}

// refreshCSRF re-reads the csrf cookie from the jar and adopts a fresh
// value when the site rotated it.
func (c *Client) refreshCSRF() {
	u, err := url.Parse(BaseURL)
	if err != nil {
		return
	}
	for _, cookie := range c.http.GetCookies(u) {
		if cookie.Name == csrfCookieName && cookie.Value != "" && cookie.Value != c.tokens.CSRFToken {
			c.tokens.CSRFToken = cookie.Value
			c.log.Debug("csrf token rotated")
			return
		}
	}
}

// Initialize bootstraps the session: fetches the site root, captures
// cookies, reads the csrf cookie, and discovers the dynamic API tokens
// from the page source. A missing csrf cookie is a documented soft-fail;
// the session proceeds with an empty token. Re-invocation replaces the
// tokens and likely rotates cookies; callers invoke at most once.
func (c *Client) Initialize(ctx context.Context) error {
	c.log.Info("initializing session and discovering tokens")

	resp, err := c.get(ctx, BaseURL+"/", c.profile.Base())
	if err != nil {
		return err
	}

	csrf := c.readCSRFCookie()
	if csrf == "" {
		c.log.Warn("could not get csrf token from cookies")
	}

	c.tokens = DiscoverTokens(resp.body, csrf)
	c.initialized = true

	c.log.InfoWithFields("session initialized", map[string]interface{}{
		"app_id":         c.tokens.AppID,
		"asbd_id":        c.tokens.ASBDID,
		"header_profile": c.profile.Name,
	})

	return nil
}

func (c *Client) readCSRFCookie() string {
	u, err := url.Parse(BaseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.GetCookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) ensureInitialized(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	return c.Initialize(ctx)
}

// FetchProfilePage fetches a profile document, retrying per the session's
// policy. Every response passes block detection before it is returned.
func (c *Client) FetchProfilePage(ctx context.Context, username string) (string, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return "", err
	}

	return retry.DoWithResult(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.get(ctx, ProfileURL(username), c.profile.Base())
		if err != nil {
			return "", err
		}

		if err := CheckBlocks(resp.finalPath, resp.body); err != nil {
			return "", err
		}

		return resp.body, nil
	}, c.policy)
}

// FetchFeedPage fetches one page of the feed API, retrying per the
// session's policy. maxID is the cursor from the previous page.
func (c *Client) FetchFeedPage(ctx context.Context, username, maxID string, count int) (*FeedResponse, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}

	return retry.DoWithResult(ctx, func(ctx context.Context) (*FeedResponse, error) {
		h := c.profile.AJAX(c.tokens.AppID, c.tokens.CSRFToken, c.tokens.ASBDID)

		resp, err := c.get(ctx, FeedURL(username, count, maxID), h)
		if err != nil {
			return nil, err
		}

		lower := strings.ToLower(resp.body)
		if strings.Contains(lower, "login") && strings.Contains(lower, "required") {
			return nil, errs.New(errs.ErrorTypeLoginRequired, "feed API returned login required")
		}

		var feed FeedResponse
		if err := json.Unmarshal([]byte(resp.body), &feed); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeRetryable, "invalid JSON response from feed API", err)
		}

		if feed.Status == "fail" {
			msg := strings.ToLower(feed.Message)
			if strings.Contains(msg, "rate") || strings.Contains(msg, "wait") {
				return nil, errs.Newf(errs.ErrorTypeRateLimit, "rate limited: %s", feed.Message)
			}
			return nil, errs.Newf(errs.ErrorTypeParsing, "feed API error: %s", feed.Message)
		}

		return &feed, nil
	}, c.policy)
}
