// Package fakeauth is a protocol-free stand-in for the authentication
// client. It behaves like the real one where the harness can see it: work
// runs off the foreground goroutine, diagnostics go to a slog.Logger, and
// completion callbacks are posted back onto the foreground queue.
package fakeauth

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/adalharness/internal/authmodel"
	"github.com/roach88/adalharness/internal/foreground"
)

// Completion receives the result of an asynchronous call.
type Completion func(*authmodel.Result)

// Client issues fake tokens asynchronously.
type Client struct {
	authority string
	queue     foreground.Queue
	logger    *slog.Logger

	delay     time.Duration
	failWith  *authmodel.Error
	duplicate bool
	dropped   bool
	newCorrID func() uuid.UUID

	mu     sync.Mutex
	cache  map[string]*authmodel.CacheItem
	issued int
	wg     sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithDelay makes the background work take d before posting its completion.
func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// WithFailure makes every network acquisition complete with err.
func WithFailure(err *authmodel.Error) Option {
	return func(c *Client) { c.failWith = err }
}

// WithDuplicateCallbacks makes the client invoke each completion twice,
// mimicking a library bug.
func WithDuplicateCallbacks() Option {
	return func(c *Client) { c.duplicate = true }
}

// WithDroppedCallbacks makes the client never invoke completions.
func WithDroppedCallbacks() Option {
	return func(c *Client) { c.dropped = true }
}

// WithCorrelationIDs replaces the correlation ID source.
func WithCorrelationIDs(gen func() uuid.UUID) Option {
	return func(c *Client) {
		if gen != nil {
			c.newCorrID = gen
		}
	}
}

// New creates a client for authority. A blank authority is rejected with
// an invalid-argument error and no client.
func New(authority string, q foreground.Queue, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(authority) == "" {
		err := authmodel.InvalidArgumentError("authority", "It cannot be blank.")
		logger.Error(err.Details, "code", int(err.Code))
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("fakeauth: foreground queue is required")
	}

	c := &Client{
		authority: authority,
		queue:     q,
		logger:    logger.With("authority", authority),
		newCorrID: uuid.New,
		cache:     make(map[string]*authmodel.CacheItem),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AcquireToken obtains a token for resource and delivers the result to
// completion on the foreground queue. Cached tokens are delivered without
// background work; invalid arguments are delivered as error results.
func (c *Client) AcquireToken(resource, clientID string, completion Completion) {
	c.logger.Info("acquireToken", "resource", resource, "clientId", clientID)

	if completion == nil {
		c.logger.Error("acquireToken called without a completion block",
			"code", int(authmodel.CodeInvalidArgument))
		return
	}

	var argErr *authmodel.Error
	switch {
	case strings.TrimSpace(resource) == "":
		argErr = authmodel.InvalidArgumentError("resource", "It cannot be blank.")
	case strings.TrimSpace(clientID) == "":
		argErr = authmodel.InvalidArgumentError("clientId", "It cannot be blank.")
	}
	if argErr != nil {
		c.logger.Error(argErr.Details, "code", int(argErr.Code))
		c.deliver(completion, authmodel.NewErrorResult(argErr, uuid.Nil))
		return
	}

	key := cacheKey(resource, clientID)
	if item := c.cached(key); item != nil {
		c.logger.Info("token found in cache", "resource", resource)
		c.deliver(completion, authmodel.NewSuccessResult(item, false, uuid.Nil))
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
		c.deliver(completion, c.acquire(key, resource, clientID))
	}()
}

// acquire runs off the foreground goroutine.
func (c *Client) acquire(key, resource, clientID string) *authmodel.Result {
	corrID := c.newCorrID()

	if c.failWith != nil {
		c.logger.Error("token acquisition failed",
			"resource", resource,
			"correlationId", corrID.String(),
			"code", int(c.failWith.Code),
		)
		return authmodel.NewErrorResult(c.failWith, corrID)
	}

	c.mu.Lock()
	c.issued++
	item := &authmodel.CacheItem{
		Resource:        resource,
		Authority:       c.authority,
		ClientID:        clientID,
		AccessToken:     fmt.Sprintf("access-token-%d", c.issued),
		AccessTokenType: "Bearer",
		RefreshToken:    fmt.Sprintf("refresh-token-%d", c.issued),
		ExpiresOn:       time.Now().Add(time.Hour).UTC(),
	}
	c.cache[key] = item
	c.mu.Unlock()

	c.logger.Info("token acquired", "resource", resource, "correlationId", corrID.String())
	return authmodel.NewSuccessResult(item, false, corrID)
}

func (c *Client) deliver(completion Completion, result *authmodel.Result) {
	if c.dropped {
		c.logger.Debug("completion dropped")
		return
	}
	if !c.queue.Post(func() { completion(result) }) {
		c.logger.Warn("completion lost: foreground queue is closed")
		return
	}
	if c.duplicate {
		c.queue.Post(func() { completion(result) })
	}
}

func (c *Client) cached(key string) *authmodel.CacheItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache[key]
}

// ClearCache forgets every issued token.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*authmodel.CacheItem)
	c.logger.Info("token cache cleared")
}

// Wait blocks until all background acquisitions have posted (or dropped)
// their completions. Tests use it before tearing down the queue.
func (c *Client) Wait() {
	c.wg.Wait()
}

func cacheKey(resource, clientID string) string {
	return resource + "|" + clientID
}
