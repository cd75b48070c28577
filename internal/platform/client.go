package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/logger"
	"github.com/osse101/MentionBot_Go/internal/metrics"
)

// CredentialStore is the slice of the vault the client needs: read the
// current bundle and persist a replacement after a refresh.
type CredentialStore interface {
	Load() (domain.CredentialBundle, error)
	Save(domain.CredentialBundle) error
}

// Refresher exchanges a refresh token for a new bundle.
// authflow.Session satisfies this.
type Refresher interface {
	Refresh(ctx context.Context, bundle domain.CredentialBundle) (domain.CredentialBundle, error)
}

// Client wraps every authenticated outbound call with the credential and
// rate-limit policy: proactive refresh near expiry, one reactive refresh on
// 401, bounded backoff-and-retry on 429, immediate surfacing of anything else.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore
	refresher  Refresher

	// Serializes refreshes so concurrent callers can't race the vault.
	refreshMu sync.Mutex

	// Injection points for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a rate-limited platform client.
func NewClient(baseURL string, store CredentialStore, refresher Refresher, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		store:      store,
		refresher:  refresher,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// do issues one authenticated request and applies the full policy.
// Response bodies are returned raw; callers decode.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	bundle, err := c.usableBundle(ctx)
	if err != nil {
		return nil, err
	}

	refreshed := false
	rateLimitWaits := 0

	for {
		data, status, err := c.issue(ctx, method, path, query, body, bundle.AccessToken)
		if err != nil {
			return nil, err
		}

		switch {
		case status >= 200 && status < 300:
			return data, nil

		case status == http.StatusUnauthorized:
			if refreshed {
				// The refreshed token was rejected too: the stored refresh
				// token itself is dead.
				return nil, fmt.Errorf("%w: request rejected after refresh", domain.ErrAuthenticationExpired)
			}
			logger.FromContext(ctx).Warn(LogMsgReactiveRefresh, "path", path)
			bundle, err = c.refresh(ctx, bundle)
			if err != nil {
				return nil, err
			}
			refreshed = true

		case status == http.StatusTooManyRequests:
			wait := c.rateLimitWait(data)
			resumeAt := c.now().Add(wait)
			metrics.RateLimitHits.Inc()
			if rateLimitWaits >= RateLimitRetryBudget {
				logger.FromContext(ctx).Warn(LogMsgRateLimitBudget, "path", path, "resume_at", resumeAt)
				return nil, domain.RateLimitedError{ResumeAt: resumeAt}
			}
			rateLimitWaits++
			logger.FromContext(ctx).Info(LogMsgRateLimited, "path", path, "wait", wait, "attempt", rateLimitWaits)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, domain.RateLimitedError{ResumeAt: resumeAt}
			}

		default:
			return nil, domain.RemoteRequestError{StatusCode: status, Message: errorMessage(data)}
		}
	}
}

// usableBundle loads the vaulted bundle and refreshes it proactively when
// it is within ExpirySkew of expiry.
func (c *Client) usableBundle(ctx context.Context) (domain.CredentialBundle, error) {
	bundle, err := c.store.Load()
	if err != nil {
		return domain.CredentialBundle{}, err
	}
	if bundle.ExpiredBy(c.now(), ExpirySkew) {
		logger.FromContext(ctx).Info(LogMsgProactiveRefresh, "expires_at", bundle.ExpiresAt())
		return c.refresh(ctx, bundle)
	}
	return bundle, nil
}

// refresh exchanges and persists a new bundle, translating a rejected
// refresh token into the terminal authentication error.
func (c *Client) refresh(ctx context.Context, bundle domain.CredentialBundle) (domain.CredentialBundle, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if current, err := c.store.Load(); err == nil && current.AccessToken != bundle.AccessToken {
		return current, nil
	}

	fresh, err := c.refresher.Refresh(ctx, bundle)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshFailed) {
			return domain.CredentialBundle{}, fmt.Errorf("%w: %v", domain.ErrAuthenticationExpired, err)
		}
		return domain.CredentialBundle{}, err
	}
	if err := c.store.Save(fresh); err != nil {
		return domain.CredentialBundle{}, err
	}
	metrics.TokenRefreshes.Inc()
	return fresh, nil
}

// issue performs one HTTP round trip with the bearer token attached.
func (c *Client) issue(ctx context.Context, method, path string, query url.Values, body interface{}, accessToken string) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("platform request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		// Stash headers for wait computation alongside the body.
		return encodeRateLimitInfo(resp.Header, data), resp.StatusCode, nil
	}
	return data, resp.StatusCode, nil
}

// rateLimitInfo carries the throttle signaling off a 429 response.
type rateLimitInfo struct {
	RetryAfter string `json:"retry_after"`
	ResetAt    string `json:"reset_at"`
}

func encodeRateLimitInfo(h http.Header, _ []byte) []byte {
	info := rateLimitInfo{
		RetryAfter: h.Get(HeaderRetryAfter),
		ResetAt:    h.Get(HeaderRateLimitReset),
	}
	encoded, _ := json.Marshal(info)
	return encoded
}

// rateLimitWait computes how long to back off from a 429, in priority order:
// explicit Retry-After duration, reset-at timestamp minus now, fixed default.
// Jitter is always added.
func (c *Client) rateLimitWait(data []byte) time.Duration {
	wait := DefaultRateLimitWait

	var info rateLimitInfo
	if err := json.Unmarshal(data, &info); err == nil {
		if secs, err := strconv.Atoi(info.RetryAfter); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		} else if resetUnix, err := strconv.ParseInt(info.ResetAt, 10, 64); err == nil {
			until := time.Unix(resetUnix, 0).Sub(c.now())
			if until > 0 {
				wait = until
			}
		}
	}

	return wait + time.Duration(rand.Int63n(int64(MaxJitter)))
}

func errorMessage(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
