// Package confd provides an HTTP client for the directory service used
// to resolve line identities to users
package confd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"callog/internal/core/cel"
	perr "callog/internal/platform/errors"
	"callog/internal/platform/logger"
)

const (
	defaultTimeout = 10 * time.Second
)

// Options configures the Client
type Options struct {
	// BaseURL like "http://confd:9486/1.1"
	BaseURL string

	// Token is sent as X-Auth-Token on every request
	Token string

	Timeout time.Duration
}

// Client is a minimal directory client implementing cel.DirectoryPort.
// Lookups are single shot; retry policy belongs to the caller
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("confd"),
	}
}

type lineWire struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Users []struct {
		UUID string `json:"uuid"`
	} `json:"users"`
}

type listLinesWire struct {
	Items []lineWire `json:"items"`
}

type userWire struct {
	UUID      string `json:"uuid"`
	UserField string `json:"userfield"`
}

// ListLines returns the directory lines whose name equals name
func (c *Client) ListLines(ctx context.Context, name string) ([]cel.Line, error) {
	var out listLinesWire
	path := "/lines?name=" + url.QueryEscape(name)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}

	lines := make([]cel.Line, 0, len(out.Items))
	for _, item := range out.Items {
		line := cel.Line{ID: item.ID, Name: item.Name}
		for _, u := range item.Users {
			line.Users = append(line.Users, cel.User{UUID: u.UUID})
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// GetUser fetches one directory user by uuid
func (c *Client) GetUser(ctx context.Context, uuid string) (cel.User, error) {
	var out userWire
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(uuid), &out); err != nil {
		return cel.User{}, err
	}
	return cel.User{UUID: out.UUID, UserField: out.UserField}, nil
}

// getJSON issues a GET and decodes the response, mapping failure modes
// to structured errors (404 -> not found, transport/5xx -> unavailable)
func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	reqURL := c.opts.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "confd new request failed")
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("X-Auth-Token", c.opts.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "confd unreachable")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("failed to close confd response body")
		}
	}()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("confd request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return perr.NotFoundf("confd: %s not found", path)
	case resp.StatusCode >= 500:
		return perr.Unavailablef("confd: %s returned %d", path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return perr.Newf(perr.ErrorCodeUnknown, "confd: %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "confd: decoding %s", path)
	}
	return nil
}
