package fbgraph_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/facebookgo/ensure"
	"github.com/stretchr/testify/mock"

	"github.com/facebookgo/fbgraph"
	"github.com/facebookgo/fbgraph/jsonmap"
)

type mockRequester struct {
	mock.Mock
}

func (m *mockRequester) Send(method, url string, body io.Reader) (int, string, error) {
	args := m.Called(method, url, body)
	return args.Int(0), args.String(1), args.Error(2)
}

type friend struct {
	ID   string `facebook:"id"`
	Name string `facebook:"name"`
}

const (
	page1 = `{"data":[{"id":"1","name":"a"},{"id":"2","name":"b"}],
		"paging":{"cursors":{"before":"MQ","after":"Mg"},"next":"http://graph.facebook.com/me/friends?after=Mg"},
		"summary":{"total_count":5}}`
	page2 = `{"data":[{"id":"3","name":"c"},{"id":"4","name":"d"}],
		"paging":{"previous":"https://graph.facebook.com/me/friends?before=Mw","next":"https://graph.facebook.com/me/friends?after=NA"}}`
	page3 = `{"data":[{"id":"5","name":"e"}],"paging":{"previous":"https://graph.facebook.com/me/friends?before=NQ"}}`
)

func names(items []friend) []string {
	var out []string
	for _, f := range items {
		out = append(out, f.Name)
	}
	return out
}

func TestConnectionForwardOnly(t *testing.T) {
	r := &mockRequester{}
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=Mg", nil).Return(200, page2, nil).Once()
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=NA", nil).Return(200, page3, nil).Once()

	c, err := fbgraph.NewConnection[friend](r, nil, page1)
	ensure.Nil(t, err)

	var batches [][]string
	for i := 0; i < 3; i++ {
		ensure.True(t, c.HasNext())
		items, err := c.Next()
		ensure.Nil(t, err)
		batches = append(batches, names(items))
	}
	ensure.DeepEqual(t, batches, [][]string{{"a", "b"}, {"c", "d"}, {"e"}})

	ensure.False(t, c.HasNext())
	_, err = c.Next()
	ensure.True(t, err == fbgraph.ErrNoMorePages, err)
	r.AssertExpectations(t)
}

func TestConnectionFirstPageWithoutFetch(t *testing.T) {
	r := &mockRequester{}
	c, err := fbgraph.NewConnection[friend](r, nil, page1)
	ensure.Nil(t, err)
	items, err := c.Next()
	ensure.Nil(t, err)
	ensure.DeepEqual(t, names(items), []string{"a", "b"})
	r.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestConnectionPage(t *testing.T) {
	c, err := fbgraph.NewConnection[friend](&mockRequester{}, nil, page1)
	ensure.Nil(t, err)
	p := c.Page()
	ensure.DeepEqual(t, p.Next, "https://graph.facebook.com/me/friends?after=Mg")
	ensure.DeepEqual(t, p.Previous, "")
	ensure.DeepEqual(t, p.Before, "MQ")
	ensure.DeepEqual(t, p.After, "Mg")
	ensure.DeepEqual(t, p.Summary, `{"total_count":5}`)
}

func TestParsePageUpgradesScheme(t *testing.T) {
	p, err := fbgraph.ParsePage[friend](nil, `{"data":[],"paging":{
		"previous":"HTTP://graph.facebook.com/me/friends?before=MQ",
		"next":"Http://graph.facebook.com/me/friends?after=Mg"}}`)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, p.Previous, "https://graph.facebook.com/me/friends?before=MQ")
	ensure.DeepEqual(t, p.Next, "https://graph.facebook.com/me/friends?after=Mg")

	p, err = fbgraph.ParsePage[friend](nil, `{"paging":{"next":"/me/friends?after=Mg"}}`)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, p.Next, "/me/friends?after=Mg")
}

func TestParsePageAnomalies(t *testing.T) {
	p, err := fbgraph.ParsePage[friend](nil, `{"data":{}}`)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, p.Items, []friend{})

	p, err = fbgraph.ParsePage[friend](nil, `{}`)
	ensure.Nil(t, err)
	ensure.True(t, p.Items == nil)
	ensure.DeepEqual(t, p.Next, "")

	_, err = fbgraph.ParsePage[friend](nil, `[]`)
	ensure.True(t, errors.Is(err, jsonmap.ErrArrayAsObject), err)

	_, err = fbgraph.ParsePage[friend](nil, `false`)
	ensure.NotNil(t, err)

	_, err = fbgraph.ParsePage[friend](nil, `{"data":[{"id":{"x":1},"name":"a"}]}`)
	ensure.Nil(t, err)
}

func TestConnectionFetchError(t *testing.T) {
	r := &mockRequester{}
	givenErr := errors.New("boom")
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=Mg", nil).Return(0, "", givenErr).Once()

	c, err := fbgraph.NewConnection[friend](r, nil, page1)
	ensure.Nil(t, err)
	_, err = c.Next()
	ensure.Nil(t, err)
	_, err = c.Next()
	ensure.True(t, err == givenErr, err)
	ensure.DeepEqual(t, c.Page().After, "Mg")
	r.AssertExpectations(t)
}

func TestConnectionAPIError(t *testing.T) {
	r := &mockRequester{}
	r.On("Send", "GET", "me/friends", nil).
		Return(http.StatusForbidden, `{"error":{"message":"nope","code":200}}`, nil).Once()

	_, err := fbgraph.FetchConnection[friend](r, nil, "me/friends")
	ensure.DeepEqual(t, err, &fbgraph.Error{Message: "nope", Code: 200, StatusCode: http.StatusForbidden})
	r.AssertExpectations(t)
}

func TestConnectionPrevious(t *testing.T) {
	r := &mockRequester{}
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=Mg", nil).Return(200, page2, nil).Once()
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?before=Mw", nil).Return(200, page1, nil).Once()

	c, err := fbgraph.NewConnection[friend](r, nil, page1)
	ensure.Nil(t, err)
	_, err = c.Previous()
	ensure.True(t, err == fbgraph.ErrNoMorePages)

	_, err = c.Next()
	ensure.Nil(t, err)
	_, err = c.Next()
	ensure.Nil(t, err)
	prev, err := c.Previous()
	ensure.Nil(t, err)
	items, err := prev.Next()
	ensure.Nil(t, err)
	ensure.DeepEqual(t, names(items), []string{"a", "b"})
	ensure.DeepEqual(t, c.Page().Next, "https://graph.facebook.com/me/friends?after=NA")
	r.AssertExpectations(t)
}

func TestConnectionEach(t *testing.T) {
	r := &mockRequester{}
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=Mg", nil).Return(200, page2, nil).Once()
	r.On("Send", "GET", "https://graph.facebook.com/me/friends?after=NA", nil).Return(200, page3, nil).Once()

	c, err := fbgraph.NewConnection[friend](r, nil, page1)
	ensure.Nil(t, err)
	var all []friend
	ensure.Nil(t, c.Each(func(f friend) error {
		all = append(all, f)
		return nil
	}))
	ensure.DeepEqual(t, names(all), []string{"a", "b", "c", "d", "e"})

	stop := errors.New("stop")
	c, err = fbgraph.NewConnection[friend](r, nil, page3)
	ensure.Nil(t, err)
	ensure.True(t, c.Each(func(friend) error { return stop }) == stop)
	r.AssertExpectations(t)
}

func TestConnectionThroughClient(t *testing.T) {
	client := &fbgraph.Client{
		Transport: fTransport(func(r *http.Request) (*http.Response, error) {
			ensure.DeepEqual(t, r.URL.String(), "https://graph.facebook.com/me/friends?limit=2")
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(page3)),
			}, nil
		}),
	}
	u, err := fbgraph.URL("me/friends", fbgraph.ParamLimit(2))
	ensure.Nil(t, err)
	c, err := fbgraph.FetchConnection[friend](client, nil, u)
	ensure.Nil(t, err)
	items, err := c.Next()
	ensure.Nil(t, err)
	ensure.DeepEqual(t, items, []friend{{ID: "5", Name: "e"}})
}
