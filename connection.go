package fbgraph

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/facebookgo/fbgraph/jsonmap"
)

// Requester executes a request and returns the raw response status and body.
// Relative URLs are resolved by the implementation. *Client implements it, as
// do the batching and caching clients in the subpackages.
type Requester interface {
	Send(method, url string, body io.Reader) (status int, respBody string, err error)
}

// ErrNoMorePages is returned by Connection.Next once the last page has been
// returned.
var ErrNoMorePages = errors.New("fbgraph: no more pages")

// Page is one page of a connection response:
//
//	{"data": [...], "paging": {"previous": "...", "next": "...", "cursors": {...}}}
type Page[T any] struct {
	Items    []T
	Previous string
	Next     string
	Before   string
	After    string

	// Raw JSON of the "summary" member, empty when the response had none.
	Summary string
}

type envelope struct {
	Paging  *paging `facebook:"paging"`
	Summary string  `facebook:"summary"`
}

type paging struct {
	Previous string   `facebook:"previous"`
	Next     string   `facebook:"next"`
	Cursors  *cursors `facebook:"cursors"`
}

type cursors struct {
	Before string `facebook:"before"`
	After  string `facebook:"after"`
}

// ParsePage maps a connection response body.
func ParsePage[T any](m *jsonmap.Mapper, body string) (*Page[T], error) {
	env, err := jsonmap.Object[envelope](m, body)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("fbgraph: connection response without a value: %q", body)
	}

	page := &Page[T]{Summary: env.Summary}
	if data := gjson.Get(body, "data"); data.Exists() {
		page.Items, err = jsonmap.List[T](m, data.Raw)
		if err != nil {
			return nil, err
		}
	}
	if p := env.Paging; p != nil {
		page.Previous = secure(p.Previous)
		page.Next = secure(p.Next)
		if p.Cursors != nil {
			page.Before = p.Cursors.Before
			page.After = p.Cursors.After
		}
	}
	return page, nil
}

// secure upgrades http paging URLs to https.
func secure(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || !strings.EqualFold(parsed.Scheme, "http") {
		return u
	}
	parsed.Scheme = "https"
	return parsed.String()
}

// Connection iterates forward over the pages of a connection. The first call
// to Next returns the page the Connection was created with, each following
// call fetches exactly one more page. It is not safe for concurrent use.
type Connection[T any] struct {
	requester Requester
	mapper    *jsonmap.Mapper
	page      *Page[T]
	started   bool
}

// NewConnection creates a Connection from the body of the first page. r is
// used to fetch the following pages. m may be nil.
func NewConnection[T any](r Requester, m *jsonmap.Mapper, body string) (*Connection[T], error) {
	page, err := ParsePage[T](m, body)
	if err != nil {
		return nil, err
	}
	return &Connection[T]{requester: r, mapper: m, page: page}, nil
}

// FetchConnection fetches the first page from url and creates a Connection
// from it.
func FetchConnection[T any](r Requester, m *jsonmap.Mapper, url string) (*Connection[T], error) {
	page, err := fetchPage[T](r, m, url)
	if err != nil {
		return nil, err
	}
	return &Connection[T]{requester: r, mapper: m, page: page}, nil
}

func fetchPage[T any](r Requester, m *jsonmap.Mapper, url string) (*Page[T], error) {
	status, body, err := r.Send(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status > 399 || status < 200 {
		return nil, ResponseError(m, status, body)
	}
	return ParsePage[T](m, body)
}

// Page returns the current page.
func (c *Connection[T]) Page() *Page[T] {
	return c.page
}

// HasNext reports whether Next has more items to return.
func (c *Connection[T]) HasNext() bool {
	return !c.started || c.page.Next != ""
}

// Next returns the items of the next page, or ErrNoMorePages. A failed fetch
// leaves the Connection on its current page.
func (c *Connection[T]) Next() ([]T, error) {
	if !c.started {
		c.started = true
		return c.page.Items, nil
	}
	if c.page.Next == "" {
		return nil, ErrNoMorePages
	}
	page, err := fetchPage[T](c.requester, c.mapper, c.page.Next)
	if err != nil {
		return nil, err
	}
	c.page = page
	return page.Items, nil
}

// Previous fetches the page before the current one as a new Connection. The
// receiver keeps its position.
func (c *Connection[T]) Previous() (*Connection[T], error) {
	if c.page.Previous == "" {
		return nil, ErrNoMorePages
	}
	return FetchConnection[T](c.requester, c.mapper, c.page.Previous)
}

// Each calls fn with every remaining item, fetching pages as needed. It stops
// at the first error.
func (c *Connection[T]) Each(fn func(T) error) error {
	for c.HasNext() {
		items, err := c.Next()
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return nil
}
