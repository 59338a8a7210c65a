// Package fbapic provides cached Graph API calls.
package fbapic

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/facebookgo/fbgraph"
	"github.com/facebookgo/fbgraph/jsonmap"
)

type Stats interface {
	Inc(name string)
	Record(name string, value float64)
}

// ByteCache stores response bodies. Get returns a nil slice and a nil error
// for a missing key.
type ByteCache interface {
	Store(key string, value []byte, timeout time.Duration) error
	Get(key string) ([]byte, error)
}

// Configure a Cached API accessor instance. You'll typically define
// one per type of cached call. An instance can be shared across
// goroutines.
type Cache struct {
	ByteCache ByteCache         // storage implementation
	Stats     Stats             // stats implementation, optional
	Prefix    string            // cache key prefix
	Timeout   time.Duration     // per value timeout
	Requester fbgraph.Requester // performs the uncached requests
	Logger    *slog.Logger      // defaults to slog.Default()
}

func (c *Cache) inc(name string) {
	if c.Stats == nil {
		return
	}
	c.Stats.Inc(name)
	c.Stats.Inc(name + " " + c.Prefix)
}

func (c *Cache) record(name string, value float64) {
	if c.Stats == nil {
		return
	}
	c.Stats.Record(name, value)
	c.Stats.Record(name+" "+c.Prefix, value)
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Send makes a Graph API request, answering GET and HEAD requests from the
// cache when possible. Only successful responses are stored. Cache makes a
// fbgraph.Requester, so a Connection can page through it.
func (c *Cache) Send(method, url string, body io.Reader) (int, string, error) {
	var key string
	if method == "GET" || method == "HEAD" {
		key = fmt.Sprintf("%s:%s:%s", c.Prefix, method, url)
	}

	if key != "" {
		raw, err := c.ByteCache.Get(key)
		if err != nil {
			c.inc("fbapic storage.Get error")
			return 0, "", fmt.Errorf("fbapic: error in storage.Get: %w", err)
		}
		if raw != nil {
			c.inc("fbapic cache hit")
			return http.StatusOK, string(raw), nil
		}
	}

	c.inc("fbapic cache miss")
	start := time.Now()
	status, respBody, err := c.Requester.Send(method, url, body)
	if err != nil {
		c.inc("fbapic graph api error")
		return status, respBody, err
	}
	taken := float64(time.Since(start).Nanoseconds())
	c.record("fbapic graph api time", taken)

	if key != "" && status >= 200 && status <= 299 {
		if err := c.ByteCache.Store(key, []byte(respBody), c.Timeout); err != nil {
			c.logger().Warn("fbapic: error in cache.Store", "key", key, "error", err)
		}
	}
	return status, respBody, nil
}

// Do makes a cached Graph API request and maps the response into result
// using m. API errors are returned as *fbgraph.Error.
func (c *Cache) Do(m *jsonmap.Mapper, result interface{}, method, url string) error {
	status, body, err := c.Send(method, url, nil)
	if err != nil {
		return err
	}
	if err := fbgraph.UnmarshalBody(m, status, body, result); err != nil {
		c.inc("fbapic graph api error")
		return err
	}
	return nil
}
