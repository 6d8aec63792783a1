// Package fetch retrieves job postings over HTTP, or a headless browser for script-rendered
// boards, and reduces them to plain text for the generator.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-tailor/internal/retry"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

// maxBodyBytes caps how much of a posting is read
const maxBodyBytes = 5 << 20

// Page holds the raw response of a fetch
type Page struct {
	URL        string
	HTML       string
	StatusCode int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Retry     retry.Policy
	Client    *http.Client
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Retry:     retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second, Jitter: 0.25},
	}
}

// Get retrieves a page, retrying rate limits and server errors
func Get(ctx context.Context, rawURL string, opts Options) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	policy := opts.Retry
	policy.Retryable = func(err error) bool {
		var fetchErr *Error
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			return fetchErr.StatusCode == http.StatusTooManyRequests || fetchErr.StatusCode >= 500
		}
		return true
	}

	var page *Page
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return retry.Permanent(&Error{URL: rawURL, Message: "failed to create request", Cause: err})
		}
		req.Header.Set("User-Agent", opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := client.Do(req)
		if err != nil {
			return &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
		}

		page = &Page{URL: rawURL, HTML: string(body), StatusCode: resp.StatusCode}
		if resp.StatusCode != http.StatusOK {
			return &Error{
				URL:        rawURL,
				Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
				StatusCode: resp.StatusCode,
			}
		}
		return nil
	})
	if err != nil {
		return page, err
	}
	return page, nil
}

// commonNoise is removed from every page before text extraction
const commonNoise = "nav, footer, header, script, style, noscript, svg, iframe, .ad, .advertisement, .sidebar, .cookie-banner, .popup"

// ExtractText parses HTML and returns the text of the first element matching a content
// selector, falling back to the body. Noise elements are removed first.
func ExtractText(html string, content, noise []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(commonNoise).Remove()
	if len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	main := doc.Find("body")
	for _, selector := range content {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}

	// block elements end a line so list items do not run together
	main.Find("p, li, br, h1, h2, h3, h4, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return collapseLines(main.Text()), nil
}

// collapseLines trims each line, collapses inner whitespace, and drops blank lines
func collapseLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
