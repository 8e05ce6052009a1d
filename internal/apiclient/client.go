// Package apiclient is a small typed client for the dashboard REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"edu-dashboard-api/internal/models"
	"edu-dashboard-api/internal/repository"
)

// ErrUnauthorized is returned when the server rejects the token.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	base  *url.URL
	http  *http.Client
	mu    sync.RWMutex
	token string
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: u, http: hc}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	return nil
}

func (c *Client) Courses(ctx context.Context) ([]models.Course, error) {
	var resp struct {
		Courses []models.Course `json:"courses"`
	}
	err := c.do(ctx, http.MethodGet, "/api/courses?page=1&limit=10", nil, &resp)
	return resp.Courses, err
}

func (c *Client) Quizzes(ctx context.Context) ([]models.Quiz, error) {
	var resp struct {
		Quizzes []models.Quiz `json:"quizzes"`
	}
	err := c.do(ctx, http.MethodGet, "/api/quizzes", nil, &resp)
	return resp.Quizzes, err
}

func (c *Client) Threads(ctx context.Context) ([]models.ForumThread, error) {
	var resp struct {
		Threads []models.ForumThread `json:"threads"`
	}
	err := c.do(ctx, http.MethodGet, "/api/forum/threads?page=1&limit=10", nil, &resp)
	return resp.Threads, err
}

func (c *Client) Summary(ctx context.Context) (repository.Summary, error) {
	var s repository.Summary
	err := c.do(ctx, http.MethodGet, "/api/analytics/summary", nil, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
