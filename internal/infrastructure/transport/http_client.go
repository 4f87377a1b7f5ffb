package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookit/internal/domains/book/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

// Config controls how the client reaches the books API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables client-side pacing.
	RateLimit float64
	Burst     int
}

// Client talks to the /books API. Every method returns either a decoded value
// or one of the model.Failure kinds.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	flight  singleflight.Group
	log     zerolog.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "books_client").Logger(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// ========================================
// BOOKS API
// ========================================

// List fetches the whole collection. Concurrent calls share one request,
// which runs detached from any single caller so one caller giving up does
// not fail the others; each caller still stops waiting when its ctx ends.
func (c *Client) List(ctx context.Context) ([]model.Book, error) {
	ch := c.flight.DoChan("list", func() (interface{}, error) {
		var books []model.Book
		if err := c.do(context.WithoutCancel(ctx), http.MethodGet, "/books", nil, &books); err != nil {
			return nil, err
		}
		for i := range books {
			books[i] = books[i].Normalize()
		}
		return books, nil
	})

	select {
	case <-ctx.Done():
		return nil, &model.NetworkError{Err: context.Cause(ctx)}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug().Msg("[CLIENT] list request shared")
		}
		return model.CloneBooks(res.Val.([]model.Book)), nil
	}
}

// Get fetches one book.
func (c *Client) Get(ctx context.Context, id int) (model.Book, error) {
	var b model.Book
	if err := c.do(ctx, http.MethodGet, bookPath(id), nil, &b); err != nil {
		return model.Book{}, err
	}
	if !b.HasID() {
		return model.Book{}, &model.UnknownResponseError{Status: http.StatusOK, Body: "book has no book_id"}
	}
	return b.Normalize(), nil
}

// Create posts b without an id and returns the book the server stored.
func (c *Client) Create(ctx context.Context, b model.Book) (model.Book, error) {
	var created model.Book
	if err := c.do(ctx, http.MethodPost, "/books", b.WithoutID(), &created); err != nil {
		return model.Book{}, err
	}
	return created, nil
}

// Update puts b at id. The result is nil when the server sent no body.
func (c *Client) Update(ctx context.Context, id int, b model.Book) (*model.Book, error) {
	var echoed *model.Book
	if err := c.do(ctx, http.MethodPut, bookPath(id), b.WithoutID(), &echoed); err != nil {
		return nil, err
	}
	// Some servers answer PUT with a status message instead of the book.
	if echoed != nil && echoed.Title == "" && echoed.Author == "" {
		return nil, nil
	}
	return echoed, nil
}

// Delete removes the book at id.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

func bookPath(id int) string {
	return "/books/" + strconv.Itoa(id)
}

// ========================================
// REQUEST PLUMBING
// ========================================

// do sends one request and classifies the outcome. out may be nil; an empty
// 2xx body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &model.NetworkError{Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return &model.NetworkError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("[CLIENT] request failed")
		return &model.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &model.NetworkError{Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("[CLIENT] response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &model.UnknownResponseError{Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// classify turns a non-2xx response into a ServerError when it carries a
// {msg} body and an UnknownResponseError otherwise.
func classify(status int, raw []byte) error {
	var msg model.ErrMessage
	if err := json.Unmarshal(raw, &msg); err == nil && msg.Msg != "" {
		return &model.ServerError{Status: status, Msg: msg.Msg}
	}
	return &model.UnknownResponseError{Status: status, Body: string(raw)}
}
