package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasker/internal/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Details    []models.FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a tasker server and caches read responses until a
// mutation or a notification makes them stale.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the response cache, mainly so a Subscriber can share it.
func (c *Client) Cache() *Cache {
	return c.cache
}

// ListTasks returns one page of tasks.
func (c *Client) ListTasks(ctx context.Context, q models.TaskQuery) (*models.TaskPage, error) {
	query := q.Values().Encode()
	page := &models.TaskPage{}
	if err := c.cachedGet(ctx, tasksKey(query), "/tasks?"+query, page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{}
	if err := c.cachedGet(ctx, TaskKey(id), "/tasks/"+url.PathEscape(id), task); err != nil {
		return nil, err
	}
	return task, nil
}

// Statistics returns task counts.
func (c *Client) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}
	if err := c.cachedGet(ctx, KeyStatistics, "/tasks/statistics", stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Tags returns every tag ordered by name.
func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.cachedGet(ctx, KeyTags, "/tasks/tags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in models.CreateTaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := c.do(ctx, http.MethodPost, "/tasks", in, task); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyTasks, KeyStatistics, KeyTags)
	return task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, in models.UpdateTaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), in, task); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyTasks, TaskKey(id), KeyStatistics, KeyTags)
	return task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyTasks, KeyStatistics)
	return nil
}

func (c *Client) cachedGet(ctx context.Context, key, path string, out interface{}) error {
	if body, ok := c.cache.Get(key); ok {
		return json.Unmarshal(body, out)
	}

	body, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	c.cache.Set(key, body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := c.request(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}

	return body, nil
}
