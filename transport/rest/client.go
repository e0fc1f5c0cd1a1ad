// Package rest implements service.GameAPI over the game server's plain-text
// HTTP endpoints.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/grid-client/game/service"
	"go.uber.org/zap"
)

// ErrUnexpectedStatus wraps every response with a status code >= 400
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Endpoint paths. They match the server exactly and must not change.
const (
	PathAddPlayer  = "/add_player"
	PathMovePlayer = "/move_player"
	PathUpdate     = "/update"
	PathCurrentMap = "/current_map"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 1 << 20

var _ service.GameAPI = (*Client)(nil)

// Client is a thin HTTP client for the game server
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// AddPlayer requests a new player identity. The token is returned as sent;
// callers sanitize it.
func (c *Client) AddPlayer(ctx context.Context) (service.PlayerIdentity, error) {
	body, err := c.call(ctx, http.MethodGet, PathAddPlayer, nil)
	if err != nil {
		return "", err
	}
	return service.PlayerIdentity(body), nil
}

// MovePlayer submits one step for the player
func (c *Client) MovePlayer(ctx context.Context, id service.PlayerIdentity, intent service.MoveIntent) (service.MoveResult, error) {
	query := url.Values{}
	query.Set("player_uuid", string(id.Sanitize()))
	query.Set("x", strconv.Itoa(intent.DX))
	query.Set("y", strconv.Itoa(intent.DY))

	body, err := c.call(ctx, http.MethodGet, PathMovePlayer, query)
	if err != nil {
		return "", err
	}
	return service.MoveResult(body), nil
}

// Update asks the server to advance the world. The body is discarded.
func (c *Client) Update(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, PathUpdate, nil)
	return err
}

// CurrentMap fetches one map snapshot
func (c *Client) CurrentMap(ctx context.Context) (service.MapSnapshot, error) {
	body, err := c.call(ctx, http.MethodGet, PathCurrentMap, nil)
	if err != nil {
		return "", err
	}
	return service.MapSnapshot(body), nil
}

// call performs one request and returns the response body as text
func (c *Client) call(ctx context.Context, method, path string, query url.Values) (string, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return "", fmt.Errorf("build %s %s: %w", method, path, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.Debugw("game server call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: %s %s returned %d: %s",
			ErrUnexpectedStatus, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return string(data), nil
}
