// Package client is a small HTTP client for the moments API.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type Client struct {
	http *resty.Client
}

// New creates a client for baseURL. token may be empty for the auth endpoints.
func New(baseURL, token string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "moments-cli/0.1.0")
	if token != "" {
		httpClient.SetAuthToken(token)
	}

	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Log.Debug("HTTP Response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return nil
	})

	return &Client{http: httpClient}
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	apiErr := &APIError{}
	req := c.http.R().SetContext(ctx).SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, apiPrefix+path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

// SignIn exchanges local credentials for a token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, resty.MethodPost, "/auth/signin", models.LoginRequest{Email: email, Password: password}, &out)
	return out.Token, err
}

func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, resty.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, uid string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, resty.MethodGet, "/users/"+uid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Post(ctx context.Context, postID string) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, resty.MethodGet, "/posts/"+postID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HasLiked(ctx context.Context, postID string) (bool, error) {
	var out struct {
		HasLiked bool `json:"hasLiked"`
	}
	err := c.do(ctx, resty.MethodGet, "/posts/"+postID+"/likes/status", nil, &out)
	return out.HasLiked, err
}

func (c *Client) Like(ctx context.Context, postID string) error {
	return c.do(ctx, resty.MethodPost, "/posts/"+postID+"/likes", nil, nil)
}

func (c *Client) Unlike(ctx context.Context, postID string) error {
	return c.do(ctx, resty.MethodDelete, "/posts/"+postID+"/likes", nil, nil)
}

func (c *Client) IsFollowing(ctx context.Context, uid string) (bool, error) {
	var out envelope[struct {
		Following bool `json:"following"`
	}]
	err := c.do(ctx, resty.MethodGet, "/users/"+uid+"/follow", nil, &out)
	return out.Data.Following, err
}

func (c *Client) Follow(ctx context.Context, uid string) error {
	return c.do(ctx, resty.MethodPost, "/users/"+uid+"/follow", nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, uid string) error {
	return c.do(ctx, resty.MethodDelete, "/users/"+uid+"/follow", nil, nil)
}

// Search finds users by handle prefix.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]models.UserCompact, error) {
	var out []models.UserCompact
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", term).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		SetError(apiErr).
		Get(apiPrefix + "/users/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return nil, apiErr
	}
	return out, nil
}

func (c *Client) Feed(ctx context.Context) ([]models.PostView, error) {
	var out envelope[struct {
		Posts []models.PostView `json:"posts"`
	}]
	if err := c.do(ctx, resty.MethodGet, "/feed", nil, &out); err != nil {
		return nil, err
	}
	return out.Data.Posts, nil
}
