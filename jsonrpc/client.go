package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Client sends JSON-RPC requests to a node over HTTP POST.
type Client struct {
	url    string
	http   *http.Client
	nextID uint64
}

func NewClient(url string) (*Client, error) {
	if url == "" {
		return nil, errors.New("empty node url")
	}

	return &Client{
		url:  url,
		http: http.DefaultClient,
	}, nil
}

// Do sends req and returns the decoded response envelope. A zero req.ID is
// replaced with the next value of the client's counter; a non-zero ID is
// sent as-is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.ID == 0 {
		req.ID = atomic.AddUint64(&c.nextID, 1)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal request %s", req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create http request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send request %s to %s", req.Method, c.url)
	}
	defer httpResp.Body.Close()

	resp := new(Response)
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return nil, errors.Wrapf(err, "failed to decode response for %s", req.Method)
	}

	return resp, nil
}

// CallContext sends method with positional args and decodes the result into
// result, which must be a pointer. Node-side errors are returned as *Error,
// unmodified.
func (c *Client) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	resp, err := c.Do(ctx, NewRequest(method, args...))
	if err != nil {
		return err
	}

	if resp.Error != nil {
		return resp.Error
	}

	if result == nil {
		return nil
	}

	if len(resp.Result) == 0 {
		return errors.Errorf("no result in response for %s", method)
	}

	if err := json.Unmarshal(resp.Result, result); err != nil {
		return errors.Wrapf(err, "failed to unmarshal result for %s", method)
	}

	return nil
}
