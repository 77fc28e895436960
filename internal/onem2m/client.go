// Package onem2m is a thin transport for the remote oneM2M/Mobius resource
// tree. It issues single HTTP calls and hands back raw status codes and
// bodies; retry and consistency policy belongs to the caller.
package onem2m

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// oneM2M resource type tags, sent in the Content-Type header.
const (
	typeAE              = 2
	typeContainer       = 3
	typeContentInstance = 4
)

// JSON type tags used in request and response bodies.
const (
	TagAE              = "m2m:ae"
	TagContainer       = "m2m:cnt"
	TagContentInstance = "m2m:cin"
)

type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

type Client struct {
	http   *resty.Client
	origin string
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		origin: cfg.Username + ":" + cfg.Password,
		logger: logger,
	}
}

func (c *Client) post(ctx context.Context, path string, ty int, body any) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-M2M-Origin", c.origin).
		SetHeader("Content-Type", fmt.Sprintf("application/json;ty=%d", ty)).
		SetBody(body).
		Post("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return 0, nil, fmt.Errorf("oneM2M request failed: %w", err)
	}
	c.logger.Debug("oneM2M create",
		zap.String("path", path),
		zap.Int("ty", ty),
		zap.Int("status", resp.StatusCode()),
	)
	return resp.StatusCode(), resp.Body(), nil
}

// CreateAE creates an application entity at the tree root.
func (c *Client) CreateAE(ctx context.Context, name string, labels []string) (int, []byte, error) {
	if labels == nil {
		labels = []string{}
	}
	body := map[string]any{
		TagAE: map[string]any{"rn": name, "lbl": labels, "rr": false, "api": name},
	}
	return c.post(ctx, "", typeAE, body)
}

// CreateContainer creates a named container under parentPath.
func (c *Client) CreateContainer(ctx context.Context, name, parentPath string, labels []string) (int, []byte, error) {
	if labels == nil {
		labels = []string{}
	}
	body := map[string]any{
		TagContainer: map[string]any{"rn": name, "lbl": labels, "mni": 120},
	}
	return c.post(ctx, parentPath, typeContainer, body)
}

// CreateContentInstance appends an immutable content record under
// parentPath/childName.
func (c *Client) CreateContentInstance(ctx context.Context, parentPath, childName, content string, labels []string) (int, []byte, error) {
	if labels == nil {
		labels = []string{}
	}
	body := map[string]any{
		TagContentInstance: map[string]any{"con": content, "lbl": labels},
	}
	return c.post(ctx, parentPath+"/"+childName, typeContentInstance, body)
}

// DeleteResource deletes the resource at path.
func (c *Client) DeleteResource(ctx context.Context, path string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-M2M-Origin", c.origin).
		Delete("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return 0, nil, fmt.Errorf("oneM2M request failed: %w", err)
	}
	c.logger.Debug("oneM2M delete",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
	)
	return resp.StatusCode(), resp.Body(), nil
}

// GetContainer reads a resource; resolveAll expands the full subtree (rcn=4).
func (c *Client) GetContainer(ctx context.Context, path string, resolveAll bool) (int, []byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-M2M-Origin", c.origin)
	if resolveAll {
		req.SetQueryParam("rcn", "4")
	}
	resp, err := req.Get("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return 0, nil, fmt.Errorf("oneM2M request failed: %w", err)
	}
	return resp.StatusCode(), resp.Body(), nil
}

// ParseResourceID extracts the canonical short resource id from a creation
// response body: the trailing path segment of body[tag]["ri"].
func ParseResourceID(body []byte, tag string) (string, error) {
	var parsed map[string]struct {
		RI string `json:"ri"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse oneM2M response: %w", err)
	}
	entry, ok := parsed[tag]
	if !ok || entry.RI == "" {
		return "", fmt.Errorf("oneM2M response has no %q resource id", tag)
	}
	parts := strings.Split(entry.RI, "/")
	return parts[len(parts)-1], nil
}
