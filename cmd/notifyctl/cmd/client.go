package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// callError is the error half of the server's callable envelope.
type callError struct {
	HTTPStatus int
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *callError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("server returned %d", e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

type client struct {
	baseURL string
	key     string
	http    *http.Client
}

func newClient() *client {
	return &client{
		baseURL: strings.TrimRight(serverURL, "/"),
		key:     operatorKey,
		http:    http.DefaultClient,
	}
}

// call invokes a callable endpoint with {"data": data} and decodes the
// result into dst.
func (c *client) call(ctx context.Context, path string, data, dst interface{}) error {
	if data == nil {
		data = struct{}{}
	}
	body, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, &envelope); err != nil {
		return err
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Result, dst); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// get fetches a JSON document from an operator endpoint.
func (c *client) get(ctx context.Context, path string, query url.Values, dst interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

func (c *client) do(req *http.Request, dst interface{}) error {
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *callError `json:"error"`
		}
		ce := &callError{}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != nil {
			ce = envelope.Error
		}
		ce.HTTPStatus = resp.StatusCode
		return ce
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
