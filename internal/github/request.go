package github

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/utils"
)

const (
	contentType     = "application/json"
	acceptREST      = "application/vnd.github+json"
	contentEncoding = "gzip"
	apiVersion      = "2022-11-28"

	maxErrorBody         = 120
	minRemainingRequests = 10
)

// ErrRateLimited is wrapped by a TransientSearchError when the REST quota is exhausted.
var ErrRateLimited = errors.New("github rate limit exceeded")

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	return req
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.recordRateLimit(resp.Header)
	return resp, nil
}

// readBody reads the whole response body, transparently un-gzipping it.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

// do executes req and decodes a 200 JSON body into target. Non-200 statuses
// are mapped onto AuthError, ErrNotFound or TransientSearchError.
func (c *Client) do(req *http.Request, query string, target any) error {
	resp, err := c.request(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransientSearchError{Query: query, Err: err}
	}

	data, err := readBody(resp)
	if err != nil {
		return &TransientSearchError{Query: query, StatusCode: resp.StatusCode, Err: err}
	}

	if err := c.statusError(resp, query, data); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &TransientSearchError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func (c *Client) statusError(resp *http.Response, query string, body []byte) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &AuthError{StatusCode: resp.StatusCode, Body: utils.TruncateForLog(string(body), maxErrorBody)}
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return &TransientSearchError{Query: query, StatusCode: resp.StatusCode, Err: ErrRateLimited}
		}
		if resp.StatusCode == http.StatusForbidden {
			return &AuthError{StatusCode: resp.StatusCode, Body: utils.TruncateForLog(string(body), maxErrorBody)}
		}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	return &TransientSearchError{Query: query, StatusCode: resp.StatusCode}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", acceptREST)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, req.URL.Path, target)
}

func (c *Client) postJSON(ctx context.Context, rawURL string, payload any, query string, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, query, target)
}

func (c *Client) recordRateLimit(h http.Header) {
	remaining := h.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return
	}

	n, err := strconv.Atoi(remaining)
	if err != nil {
		return
	}

	rl := RateLimit{Remaining: n, Known: true}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	c.setRateLimit(rl)

	if n < minRemainingRequests {
		c.logger.Warn("github rate limit is almost exhausted",
			zap.Int("remaining", n),
			zap.Time("reset", rl.Reset),
		)
	}
}

// decode copies a generic JSON value into result using the json field tags.
func decode(input, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  result,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	return decoder.Decode(input)
}
