package duolingo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"StreakSentinel/internal/model"
)

const (
	defaultBaseURL = "https://www.duolingo.com"
	apiVersion     = "2017-06-30"

	// DefaultLanguage is used when the profile carries no language list.
	DefaultLanguage = "en"

	// Realistic browser User-Agent. The service actively blocks requests it
	// recognizes as scripted, so the client must not identify itself as one.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// Client talks to Duolingo's unofficial API. It owns the session credential:
// the bearer token obtained at login is held on the instance, not in process
// globals, so several accounts could be driven from one process.
type Client struct {
	BaseURL  string
	Username string
	password string

	Token  string
	UserID int64

	HTTP *http.Client

	MaxRetries int
	RetryDelay time.Duration
}

// NewClient creates a client with an explicit request timeout and optional
// proxy. Retries default to 3 attempts spaced 5s apart until overridden.
func NewClient(username, password string, timeout time.Duration, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL:  defaultBaseURL,
		Username: username,
		password: password,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

// SetToken installs a bearer token, e.g. one read from the session cache.
func (c *Client) SetToken(token string) { c.Token = token }

// SessionToken returns the current bearer token.
func (c *Client) SessionToken() string { return c.Token }

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// Login authenticates with the login/password pair. The session token comes
// back in the "jwt" response header (sometimes the "jwt_token" cookie) and
// the numeric account id in the body.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"login":    c.Username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("marshal login payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.BaseURL+"/login", payload)
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}

	log.Printf("[INFO] authenticating user: %s", c.Username)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &AuthenticationError{Reason: fmt.Sprintf("login request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if looksBlocked(string(body)) {
			return &BlockedError{Body: string(body)}
		}
		return &AuthenticationError{Reason: fmt.Sprintf("login status %d", resp.StatusCode)}
	}

	token := resp.Header.Get("jwt")
	if token == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == "jwt_token" {
				token = ck.Value
				break
			}
		}
	}
	if token == "" {
		return &AuthenticationError{Reason: "no session token in login response"}
	}
	c.Token = token

	var loginBody struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(body, &loginBody); err == nil && loginBody.UserID != 0 {
		c.UserID = loginBody.UserID
	}

	log.Printf("[INFO] authenticated, user id: %d", c.UserID)
	return nil
}

// userEnvelope tolerates the profile response being wrapped in a "users"
// array, which older endpoint versions do.
type userEnvelope struct {
	Users []json.RawMessage `json:"users"`
}

// FetchProfile reads the account snapshot keyed by username. The profile id
// backfills the client's user id when the login body carried none.
func (c *Client) FetchProfile(ctx context.Context) (*model.Profile, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.BaseURL, url.PathEscape(c.Username))
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ProfileFetchError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthenticationError{Reason: fmt.Sprintf("profile fetch status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Body: string(body)}
	}

	raw := body
	var env userEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Users) > 0 {
		raw = env.Users[0]
	}

	var profile model.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, &ProfileFetchError{Status: resp.StatusCode, Body: fmt.Sprintf("decode: %v", err)}
	}

	if c.UserID == 0 && profile.ID != 0 {
		c.UserID = profile.ID
	}
	return &profile, nil
}

// ResolveLearningLanguage derives the shop language code from the profile's
// language list: the entry flagged as currently learning, else the first
// entry, else the fixed default. No network call.
func ResolveLearningLanguage(p *model.Profile) string {
	for _, lang := range p.Languages {
		if lang.Current {
			return lang.Code
		}
	}
	if len(p.Languages) > 0 {
		return p.Languages[0].Code
	}
	return DefaultLanguage
}

// Purchase buys the named item for the account. Rate-limit and server
// errors are retried with a fixed delay up to MaxRetries additional
// attempts; every other failure surfaces immediately as a typed error.
func (c *Client) Purchase(ctx context.Context, itemName, languageCode string) (*model.PurchaseResult, error) {
	if c.Token == "" || c.UserID == 0 {
		return nil, &AuthenticationError{Reason: "not authenticated"}
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[WARN] purchase retry %d/%d after: %v", attempt, c.MaxRetries, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.RetryDelay):
			}
		}

		result, err := c.purchaseOnce(ctx, itemName, languageCode)
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) purchaseOnce(ctx context.Context, itemName, languageCode string) (*model.PurchaseResult, error) {
	payload, err := json.Marshal(map[string]string{
		"itemName":         itemName,
		"learningLanguage": languageCode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal purchase payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/users/%d/shop-items", c.BaseURL, apiVersion, c.UserID)
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("build purchase request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ServiceUnavailableError{Status: 0}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnexpectedResponseError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var se shopError
		_ = json.Unmarshal(body, &se)
		return nil, classifyShopResponse(resp.StatusCode, string(body), &se, itemName)
	}

	// Success body: {"<item name>": <unix timestamp>}
	var success map[string]int64
	purchasedAt := time.Now()
	if err := json.Unmarshal(body, &success); err == nil {
		if ts, ok := success[itemName]; ok && ts > 0 {
			purchasedAt = time.Unix(ts, 0)
		}
	}
	return &model.PurchaseResult{ItemName: itemName, PurchasedAt: purchasedAt}, nil
}
