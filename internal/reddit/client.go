// Package reddit is a minimal client for the Reddit submission API using a
// script app's password grant.
package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"post_scheduler/internal/domain"
)

const maxErrorBody = 4 << 10

// Config holds Reddit client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration

	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client submits posts on behalf of a single account.
type Client struct {
	api      *http.Client // authorized
	upload   *http.Client // unauthorized, for media leases
	tokens   oauth2.TokenSource
	baseURL  string
	username string

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new Reddit client. No request is made until Verify or a
// submission is called.
func New(cfg Config, logger *slog.Logger) *Client {
	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	tokens := oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		config:   oauthCfg,
		client:   base,
		username: cfg.Username,
		password: cfg.Password,
	})

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Client{
		api: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: base.Transport},
		},
		upload:         base,
		tokens:         tokens,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		username:       cfg.Username,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "reddit"),
	}
}

// Verify fetches an access token, failing if the credentials are rejected.
func (c *Client) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.tokens.Token(); err != nil {
		return fmt.Errorf("authenticate as %s: %w", c.username, err)
	}
	c.logger.Info("authenticated", "username", c.username)
	return nil
}

func (c *Client) SubmitLinkToSubreddit(ctx context.Context, subreddit, title, link, flairID string) error {
	return c.submit(ctx, c.subredditForm(subreddit, title, "link", flairID, "url", link))
}

func (c *Client) SubmitTextToSubreddit(ctx context.Context, subreddit, title, body, flairID string) error {
	return c.submit(ctx, c.subredditForm(subreddit, title, "self", flairID, "text", body))
}

func (c *Client) SubmitImageToSubreddit(ctx context.Context, subreddit, title string, image Image, flairID string) error {
	link, err := c.uploadMedia(ctx, image)
	if err != nil {
		return err
	}
	return c.submit(ctx, c.subredditForm(subreddit, title, "image", flairID, "url", link))
}

func (c *Client) SubmitLinkToProfile(ctx context.Context, title, link string) error {
	return c.submit(ctx, c.profileForm(title, "link", "url", link))
}

func (c *Client) SubmitTextToProfile(ctx context.Context, title, body string) error {
	return c.submit(ctx, c.profileForm(title, "self", "text", body))
}

func (c *Client) SubmitImageToProfile(ctx context.Context, title string, image Image) error {
	link, err := c.uploadMedia(ctx, image)
	if err != nil {
		return err
	}
	return c.submit(ctx, c.profileForm(title, "image", "url", link))
}

// LinkFlairs lists the link flair templates of subreddit.
func (c *Client) LinkFlairs(ctx context.Context, subreddit string) ([]domain.Flair, error) {
	endpoint := fmt.Sprintf("%s/r/%s/api/link_flair_v2", c.baseURL, url.PathEscape(subreddit))

	var templates []flairTemplate
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		templates, err = c.fetchFlairs(ctx, endpoint)
		if err == nil {
			break
		}

		if attempt == c.maxAttempts {
			return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("flair lookup failed, retrying",
			"subreddit", subreddit,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	flairs := make([]domain.Flair, 0, len(templates))
	for _, t := range templates {
		flairs = append(flairs, domain.Flair{ID: t.ID, Text: t.Text})
	}
	return flairs, nil
}

func (c *Client) fetchFlairs(ctx context.Context, endpoint string) ([]flairTemplate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var templates []flairTemplate
	if err := c.do(c.api, req, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) subredditForm(subreddit, title, kind, flairID, field, value string) url.Values {
	form := c.baseForm(subreddit, title, kind, field, value)
	if flairID != "" {
		form.Set("flair_id", flairID)
	}
	return form
}

func (c *Client) profileForm(title, kind, field, value string) url.Values {
	return c.baseForm("u_"+c.username, title, kind, field, value)
}

func (c *Client) baseForm(sr, title, kind, field, value string) url.Values {
	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("kind", kind)
	form.Set("sr", sr)
	form.Set("title", title)
	form.Set(field, value)
	form.Set("resubmit", "true")
	form.Set("sendreplies", "true")
	return form
}

// submit makes exactly one submission request.
func (c *Client) submit(ctx context.Context, form url.Values) error {
	req, err := c.formRequest(ctx, "/api/submit", form)
	if err != nil {
		return err
	}

	var resp submitResponse
	if err := c.do(c.api, req, &resp); err != nil {
		return err
	}
	if errs := parseAPIErrors(resp.JSON.Errors); errs != nil {
		return errs
	}

	c.logger.Debug("submitted",
		"sr", form.Get("sr"),
		"kind", form.Get("kind"),
		"name", resp.JSON.Data.Name,
	)
	return nil
}

// uploadMedia obtains an upload lease, uploads image to it and returns the
// resulting media URL.
func (c *Client) uploadMedia(ctx context.Context, image Image) (string, error) {
	form := url.Values{}
	form.Set("filepath", image.Filename)
	form.Set("mimetype", image.MIMEType)

	req, err := c.formRequest(ctx, "/api/media/asset.json", form)
	if err != nil {
		return "", err
	}

	var lease mediaAssetResponse
	if err := c.do(c.api, req, &lease); err != nil {
		return "", fmt.Errorf("request upload lease: %w", err)
	}
	if lease.Args.Action == "" {
		return "", errors.New("upload lease has no action")
	}

	action := lease.Args.Action
	if strings.HasPrefix(action, "//") {
		action = "https:" + action
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	var key string
	for _, f := range lease.Args.Fields {
		if f.Name == "key" {
			key = f.Value
		}
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return "", fmt.Errorf("write lease field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", image.Filename)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, image.Body); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	upReq, err := http.NewRequestWithContext(ctx, http.MethodPost, action, &body)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	upReq.Header.Set("Content-Type", mw.FormDataContentType())

	if err := c.do(c.upload, upReq, nil); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if key == "" {
		return "", errors.New("upload lease has no key")
	}

	return action + "/" + key, nil
}

func (c *Client) formRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// passwordTokenSource fetches tokens with the resource owner password grant.
type passwordTokenSource struct {
	config   *oauth2.Config
	client   *http.Client
	username string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.client)
	return s.config.PasswordCredentialsToken(ctx, s.username, s.password)
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
