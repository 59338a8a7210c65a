package fbgraph

import (
	"fmt"
	"net/http"
)

// Get makes a GET Graph API request for path and maps the response into
// result. Dates are requested in the format ParseTime understands.
func (c *Client) Get(result interface{}, path string, params ...Param) error {
	u, err := URL(path, append([]Param{DateFormat}, params...)...)
	if err != nil {
		return err
	}
	status, body, err := c.Send(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fbgraph: request for path %s failed: %w", path, err)
	}
	return UnmarshalBody(c.Mapper, status, body, result)
}
