package connector

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"go.uber.org/zap"
)

const (
	DefaultMaxBodySize = 16 * 1024 * 1024
	maxErrorBodySize   = 512
)

type Connector struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
	token   string
}

func New(config *configs.Config, logger *zap.Logger) *Connector {

	c := &Connector{
		client: &http.Client{
			Timeout: config.Sonar.Timeout,
		},
		logger:  logger.Named("Connector"),
		baseURL: strings.TrimRight(config.Sonar.URL, "/"),
		token:   config.Sonar.Token,
	}

	c.logger.Info("Prepared management API client",
		zap.String("url", c.baseURL),
		zap.Duration("timeout", config.Sonar.Timeout),
		zap.Bool("token", len(c.token) > 0),
	)

	return c
}

func (c *Connector) GetBaseURL() string {
	return c.baseURL
}

func (c *Connector) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query)
}

func (c *Connector) Post(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, query)
}

func (c *Connector) do(ctx context.Context, method string, path string, query url.Values) ([]byte, error) {

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Cause: err}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("-> "+path,
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBodySize {
			snippet = snippet[:maxErrorBodySize]
		}

		return nil, &APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(snippet),
		}
	}

	return body, nil
}
