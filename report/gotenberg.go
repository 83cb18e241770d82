package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a Gotenberg instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Paper sizes in inches, as Gotenberg expects them.
type Paper struct {
	Width  float64
	Height float64
	Margin float64
}

var (
	// A4 is used for summaries.
	A4 = Paper{Width: 8.27, Height: 11.7, Margin: 0.4}
	// Receipt80mm fits thermal receipt printers. The height is a ceiling;
	// Chromium stops at the end of the content when the CSS page size is
	// preferred.
	Receipt80mm = Paper{Width: 3.15, Height: 11.7, Margin: 0.08}
)

type renderOptions struct {
	paper     Paper
	cssPageSz bool
}

// RenderOption adjusts a single render call.
type RenderOption func(*renderOptions)

// WithPaper sets the page size and uniform margin.
func WithPaper(p Paper) RenderOption {
	return func(o *renderOptions) { o.paper = p }
}

// WithCSSPageSize lets an @page rule in the document override the paper.
func WithCSSPageSize() RenderOption {
	return func(o *renderOptions) { o.cssPageSz = true }
}

// Ping checks the Gotenberg health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg health: status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts an HTML document to PDF through the Chromium route.
// Gotenberg requires the entry file to be index.html; filename only labels
// errors. Without options the page is A4.
func (c *Client) RenderHTML(ctx context.Context, filename string, html []byte, opts ...RenderOption) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	o := renderOptions{paper: A4}
	for _, opt := range opts {
		opt(&o)
	}

	body, contentType, err := chromiumForm(html, o)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", filename, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render %s: status %d: %s", filename, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return io.ReadAll(resp.Body)
}

func chromiumForm(html []byte, o renderOptions) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(html); err != nil {
		return nil, "", err
	}
	inches := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	fields := [][2]string{
		{"paperWidth", inches(o.paper.Width)},
		{"paperHeight", inches(o.paper.Height)},
		{"marginTop", inches(o.paper.Margin)},
		{"marginBottom", inches(o.paper.Margin)},
		{"marginLeft", inches(o.paper.Margin)},
		{"marginRight", inches(o.paper.Margin)},
		{"printBackground", "true"},
		{"preferCssPageSize", strconv.FormatBool(o.cssPageSz)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
