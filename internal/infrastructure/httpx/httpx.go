package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Logger is the minimal logging surface DoJSON reports retries through.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
}

type Client struct {
	HTTP  *http.Client
	Token string
}

// DoJSON executes req and decodes a JSON response into out, retrying server
// errors and transport failures with exponential backoff. 4xx responses and
// decode failures are permanent. Pass out=nil to discard the body.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any, log Logger) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second

	op := func() error {
		// Replay the body on retried POSTs.
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			if log != nil {
				log.Warn("httpx_retry", "url", req.URL.String(), "err", err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			if log != nil {
				log.Warn("httpx_retry", "url", req.URL.String(), "status", resp.StatusCode)
			}
			return fmt.Errorf("server error %d", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(exp, ctx))
}
