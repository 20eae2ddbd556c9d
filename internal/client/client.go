// Package client 封装对上游服务（订单中心、会话助手、用户档案）的 HTTP 访问。
package client

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
	"time"
)

var (
	ErrConfigInvalid   = errors.New("upstream config invalid")
	ErrRequestFailed   = errors.New("upstream request failed")
	ErrResponseInvalid = errors.New("upstream response invalid")
	ErrRejected        = errors.New("upstream rejected request")
)

// restClient 上游 REST 客户端公共部分
type restClient struct {
	baseURL   string
	authToken string
	http      *http.Client
}

func newRESTClient(baseURL, authToken string, timeout time.Duration) (*restClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &restClient{
		baseURL:   baseURL,
		authToken: strings.TrimSpace(authToken),
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// envelope 上游统一响应包裹
type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func (c *restClient) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: marshal payload: %v", ErrRequestFailed, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *restClient) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return c.do(req, dest)
}

func (c *restClient) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrResponseInvalid, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http status %d: %s", ErrRejected, resp.StatusCode, env.Msg)
	}
	if env.StatusCode != 0 && env.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrRejected, env.Msg)
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}
