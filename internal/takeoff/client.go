// Package takeoff is the HTTP-polling client for Takeoff-style generation
// servers: one blocking call per batch request, one streaming HTTP read per
// stream request. No callback bridging is involved; the response body is the
// stream.
package takeoff

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultRequestTimeout = 2 * time.Minute
	defaultConnectTimeout = 10 * time.Second
)

// GenerateParams is the JSON body for both endpoints.
type GenerateParams struct {
	Text              string  `json:"text"`
	GenerateMaxLength int     `json:"generate_max_length"`
	SamplingTopK      int     `json:"sampling_topk"`
	SamplingTopP      float32 `json:"sampling_topp"`
	SamplingTemp      float32 `json:"sampling_temperature"`
	RepetitionPenalty float32 `json:"repetition_penalty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
}

// DefaultParams returns the server defaults for the generation body.
func DefaultParams() GenerateParams {
	return GenerateParams{
		GenerateMaxLength: 128,
		SamplingTopK:      1,
		SamplingTopP:      1.0,
		SamplingTemp:      1.0,
		RepetitionPenalty: 1.0,
	}
}

type generateResponse struct {
	Message string `json:"message"`
}

// connectionError signals the server could not be reached.
type connectionError struct{ err error }

func (e connectionError) Error() string {
	return "could not connect to takeoff server (is it running?): " + e.err.Error()
}

func (e connectionError) Unwrap() error { return e.err }

// IsConnectionError reports whether err indicates an unreachable server.
func IsConnectionError(err error) bool {
	var ce connectionError
	return errors.As(err, &ce)
}

// Client talks to one Takeoff server.
type Client struct {
	baseURL    string
	params     GenerateParams
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the server base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithParams sets the default generation parameters sent with each request.
func WithParams(p GenerateParams) Option {
	return func(c *Client) { c.params = p }
}

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient constructs a Takeoff client. All requests carry context-based
// deadlines; the http.Client itself has no global timeout.
func NewClient(opts ...Option) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		params:     DefaultParams(),
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate performs one blocking generation and returns the message text,
// cut at the first matched stop sequence when stop is non-empty.
func (c *Client) Generate(ctx context.Context, prompt string, stop []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	resp, err := c.post(ctx, "/generate", prompt)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("takeoff http error: %s: %s", resp.Status, string(b))
	}
	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("takeoff response: %w", err)
	}
	if gr.Message == "" {
		return "", errors.New("takeoff response carried no message")
	}
	return enforceStop(gr.Message, stop), nil
}

// Stream performs one streaming generation, invoking onToken for each
// decoded fragment as it arrives on the response body. Returns when the
// body is drained, ctx is done, or onToken errors.
func (c *Client) Stream(ctx context.Context, prompt string, onToken func(string) error) error {
	resp, err := c.post(ctx, "/generate_stream", prompt)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("takeoff http error: %s: %s", resp.Status, string(b))
	}

	r := bufio.NewReader(resp.Body)
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn().Err(err).Msg("takeoff stream read error")
			return err
		}
		if err := onToken(string(ch)); err != nil {
			return err
		}
	}
}

func (c *Client) post(ctx context.Context, path, prompt string) (*http.Response, error) {
	p := c.params
	p.Text = prompt
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, connectionError{err: err}
	}
	return resp, nil
}

// enforceStop cuts text at the earliest occurrence of any stop sequence.
func enforceStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
