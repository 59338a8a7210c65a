// Package fbgraph provides a client for the Facebook Graph API. Responses are
// mapped onto structs tagged with `facebook` keys by the jsonmap package, and
// paginated responses can be walked with a Connection.
package fbgraph

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/facebookgo/fbgraph/jsonmap"
)

var defaultBaseURL = &url.URL{
	Scheme: "https",
	Host:   "graph.facebook.com",
	Path:   "/",
}

// An Error from the API.
type Error struct {
	// These are provided by the Facebook API and may not always be available.
	Message     string `facebook:"message"`
	Type        string `facebook:"type"`
	Code        int    `facebook:"code"`
	Subcode     int    `facebook:"error_subcode"`
	UserTitle   string `facebook:"error_user_title"`
	UserMessage string `facebook:"error_user_msg"`
	TraceID     string `facebook:"fbtrace_id"`
	Transient   bool   `facebook:"is_transient"`

	// The HTTP status code of the response carrying the error.
	StatusCode int
}

func (e *Error) Error() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "fbgraph: error")
	if e.Code != 0 {
		fmt.Fprintf(&b, " code=%d", e.Code)
	}
	if e.Subcode != 0 {
		fmt.Fprintf(&b, " subcode=%d", e.Subcode)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " type=%q", e.Type)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " message=%q", e.Message)
	}
	if e.TraceID != "" {
		fmt.Fprintf(&b, " trace=%s", e.TraceID)
	}
	return b.String()
}

// Client for the Facebook API.
type Client struct {
	// The underlying http.RoundTripper to perform the individual requests. When
	// nil http.DefaultTransport will be used.
	Transport http.RoundTripper `inject:""`

	// The base URL to parse relative URLs off. If you pass absolute URLs to Client
	// functions they are used as-is. When nil https://graph.facebook.com/ will
	// be used.
	BaseURL *url.URL

	// Maps response bodies. When nil a zero jsonmap.Mapper is used, which
	// fails on any fault it cannot tolerate by itself.
	Mapper *jsonmap.Mapper
}

func (c *Client) transport() http.RoundTripper {
	if c.Transport == nil {
		return http.DefaultTransport
	}
	return c.Transport
}

func (c *Client) resolve(u *url.URL) *url.URL {
	base := c.BaseURL
	if base == nil {
		base = defaultBaseURL
	}
	if u == nil {
		return base
	}
	if !u.IsAbs() {
		return base.ResolveReference(u)
	}
	return u
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	req.Proto = "HTTP/1.1"
	req.ProtoMajor = 1
	req.ProtoMinor = 1
	req.URL = c.resolve(req.URL)

	if req.Host == "" {
		req.Host = req.URL.Host
	}

	if req.Header == nil {
		req.Header = make(http.Header)
	}

	return c.transport().RoundTrip(req)
}

// Do performs a Graph API request and maps it's response. If the response
// is an error, it will be returned as an error, else it will be mapped into
// the result.
func (c *Client) Do(req *http.Request, result interface{}) (*http.Response, error) {
	res, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := UnmarshalResponse(c.Mapper, res, result); err != nil {
		return res, err
	}
	return res, nil
}

// Send performs a request and returns the status code and body without
// interpreting them. A non nil body is sent form encoded.
func (c *Client) Send(method, rawurl string, body io.Reader) (int, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequest(method, c.resolve(u).String(), body)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.roundTrip(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, "", err
	}
	return res.StatusCode, string(b), nil
}

// UnmarshalResponse will map a http.Response from a Facebook API request
// into result, possibly returning an error if the process fails or if the API
// returned an error. A nil Mapper is valid.
func UnmarshalResponse(m *jsonmap.Mapper, res *http.Response, result interface{}) error {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return UnmarshalBody(m, res.StatusCode, string(body), result)
}

// UnmarshalBody is UnmarshalResponse for a response that was already read.
func UnmarshalBody(m *jsonmap.Mapper, status int, body string, result interface{}) error {
	if status > 399 || status < 200 {
		return ResponseError(m, status, body)
	}
	if result == nil {
		return nil
	}
	return m.Unmarshal(body, result)
}

// ResponseError builds the error for a failed response. It returns an *Error
// when the body could be mapped, and the mapping error otherwise.
func ResponseError(m *jsonmap.Mapper, status int, body string) error {
	var envelope struct {
		Error *Error `facebook:"error"`
	}
	if err := m.ToObject(body, &envelope); err != nil {
		return err
	}
	if envelope.Error == nil {
		return &Error{StatusCode: status, Message: http.StatusText(status)}
	}
	envelope.Error.StatusCode = status
	return envelope.Error
}
