package github

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL     = "https://api.github.com"
	graphQLURL = "https://api.github.com/graphql"
	userAgent  = "spigell/talentsonar"
	timeout    = 15 * time.Second
)

// Client talks to the GitHub GraphQL and REST APIs.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	GraphQLURL string

	mu        sync.Mutex
	rateLimit RateLimit
}

// New returns a client. An empty token yields unauthenticated requests, which
// only work against the REST API.
func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:      token,
		logger:     logger,
		APIURL:     apiURL,
		GraphQLURL: graphQLURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}

// Anonymous returns a copy of the client without credentials.
func (c *Client) Anonymous() *Client {
	return &Client{
		logger:     c.logger.With(zap.Bool("anonymous", true)),
		APIURL:     c.APIURL,
		GraphQLURL: c.GraphQLURL,
		HTTPClient: c.HTTPClient,
		UserAgent:  c.UserAgent,
	}
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// RateLimit is the last rate-limit state reported by the REST API.
type RateLimit struct {
	Remaining int
	Reset     time.Time
	Known     bool
}

// RateLimit returns the last observed rate-limit headers.
func (c *Client) RateLimit() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

func (c *Client) setRateLimit(rl RateLimit) {
	c.mu.Lock()
	c.rateLimit = rl
	c.mu.Unlock()
}

// lowOnQuota reports whether REST loops should stop early.
func (c *Client) lowOnQuota() bool {
	rl := c.RateLimit()
	return rl.Known && rl.Remaining < minRemainingRequests
}
