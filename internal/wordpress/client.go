// Package wordpress is a minimal client for the WordPress REST API
// (wp-json/wp/v2): creating and updating posts, and creating pages.
// Updates are retried on connection errors and 5xx responses. Creates are
// retried only when the server cannot have acted on them: on 429 and on
// connections that were never established.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Sentinel errors for client operations.
var (
	ErrMissingEndpoint = errors.New("wordpress endpoint is not configured")
	ErrRequest         = errors.New("wordpress request failed")
	ErrAuth            = errors.New("wordpress rejected the credentials")
	ErrResponse        = errors.New("unexpected wordpress response")
)

// Post statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Post is the payload of a post or page.
type Post struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Status     string         `json:"status"`
	Categories []int          `json:"categories,omitempty"`
	Tags       []int          `json:"tags,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Item is the part of the server's answer callers care about.
type Item struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Config configures a Client.
type Config struct {
	Endpoint     string // REST base, e.g. https://blog.example.com/wp-json/wp/v2
	User         string
	Password     string // application password
	Retries      int
	RetryWaitMin time.Duration // 0 = library default
	RetryWaitMax time.Duration // 0 = library default
	Logger       *slog.Logger
}

// Client talks to one WordPress site.
type Client struct {
	endpoint string
	user     string
	password string
	http     *retryablehttp.Client
}

// NewClient creates a Client for cfg.Endpoint.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid endpoint %q", ErrRequest, cfg.Endpoint)
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.Retries
	if cfg.RetryWaitMin > 0 {
		hc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		hc.RetryWaitMax = cfg.RetryWaitMax
	}
	// Hand the final response back so its status and message can be reported.
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.CheckRetry = checkRetry

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hc.Logger = logger

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		user:     cfg.User,
		password: cfg.Password,
		http:     hc,
	}, nil
}

// CreatePost creates a new post.
func (c *Client) CreatePost(ctx context.Context, post Post) (Item, error) {
	return c.send(withCreate(ctx), "/posts", post)
}

// UpdatePost replaces the content of post id. The id is sent ahead of the
// content fields in the payload.
func (c *Client) UpdatePost(ctx context.Context, id int, post Post) (Item, error) {
	payload := struct {
		ID int `json:"id"`
		Post
	}{ID: id, Post: post}
	return c.send(ctx, "/posts/"+strconv.Itoa(id), payload)
}

// CreatePage creates a new page.
func (c *Client) CreatePage(ctx context.Context, page Post) (Item, error) {
	return c.send(withCreate(ctx), "/pages", page)
}

type createKey struct{}

// withCreate marks the requests sent with ctx as non-idempotent.
func withCreate(ctx context.Context) context.Context {
	return context.WithValue(ctx, createKey{}, true)
}

func isCreate(ctx context.Context) bool {
	v, _ := ctx.Value(createKey{}).(bool)
	return v
}

// checkRetry applies the library's policy to updates. A repeated create
// after a 5xx or a broken connection may publish the post twice, so creates
// retry only on 429 and on dial failures.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if !isCreate(ctx) {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

func (c *Client) send(ctx context.Context, path string, payload any) (Item, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Item{}, fmt.Errorf("%w: encoding payload: %v", ErrRequest, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Item{}, ctxErr
		}
		return Item{}, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Item{}, statusError(resp)
	}

	var item Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return Item{}, fmt.Errorf("%w: decoding response: %v", ErrResponse, err)
	}
	return item, nil
}

// apiError is the body WordPress sends with 4xx and 5xx responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := strings.TrimSpace(string(data))
	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		detail = apiErr.Message
		if apiErr.Code != "" {
			detail = apiErr.Code + ": " + detail
		}
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	kind := ErrResponse
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = ErrAuth
	}
	return fmt.Errorf("%w: HTTP %d: %s", kind, resp.StatusCode, detail)
}
