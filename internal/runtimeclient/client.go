// Package runtimeclient is the HTTP client for the workspace master's runtime API.
package runtimeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/observability"
)

const requestIDHeader = "X-Request-ID"

type Options struct {
	Token string
	// RatePerSecond limits outbound calls; zero disables the limit.
	RatePerSecond float64
	Timeout       time.Duration
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func New(baseURL string, opts Options, log *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		log:     log,
	}
}

// GetSettings returns the master's workspace settings.
func (c *Client) GetSettings(ctx context.Context) (map[string]string, error) {
	var settings map[string]string
	if err := c.do(ctx, "get_settings", http.MethodGet, "/workspace/settings", nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *Client) GetWorkspace(ctx context.Context, id string) (*core.Workspace, error) {
	var ws core.Workspace
	if err := c.do(ctx, "get_workspace", http.MethodGet, "/workspace/"+url.PathEscape(id), nil, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (c *Client) List(ctx context.Context) ([]core.Workspace, error) {
	var list []core.Workspace
	if err := c.do(ctx, "list", http.MethodGet, "/workspace", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StartByID asks the master to start the workspace runtime. It returns once
// the start request is accepted, not once the workspace is running.
func (c *Client) StartByID(ctx context.Context, id, envName string, restoreFromSnapshot bool) error {
	q := url.Values{}
	if envName != "" {
		q.Set("environment", envName)
	}
	q.Set("restore", strconv.FormatBool(restoreFromSnapshot))
	path := "/workspace/" + url.PathEscape(id) + "/runtime?" + q.Encode()
	return c.do(ctx, "start", http.MethodPost, path, nil, nil)
}

func (c *Client) Stop(ctx context.Context, id string) error {
	return c.do(ctx, "stop", http.MethodDelete, "/workspace/"+url.PathEscape(id)+"/runtime", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out)
	observability.RemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.RemoteCallErrorsTotal.WithLabelValues(op).Inc()
		c.log.Warn("runtime api call failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return core.NewAppError(core.ErrRemoteTimeout, err.Error())
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, core.NewID())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return core.NewAppError(core.ErrRemoteTimeout, err.Error())
		}
		return core.NewAppError(core.ErrRemote, err.Error())
	}
	defer resp.Body.Close()
	return parseResponse(resp, out)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func parseResponse(resp *http.Response, out interface{}) error {
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(b, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = strings.TrimSpace(string(b))
		}
		if msg == "" {
			msg = resp.Status
		}
		code := core.ErrRemote
		switch resp.StatusCode {
		case http.StatusNotFound:
			code = core.ErrNotFound
		case http.StatusConflict:
			code = core.ErrConflict
		case http.StatusGatewayTimeout:
			code = core.ErrRemoteTimeout
		}
		return core.NewAppError(code, msg)
	}
	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return core.NewAppError(core.ErrRemote, "decode response: "+err.Error())
		}
	}
	return nil
}
