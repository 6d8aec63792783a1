package fetch

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// MinContentLength is the extracted length below which a page is assumed to be rendered by
// client-side script
const MinContentLength = 500

// ErrNoDescription is returned when a posting yields no text
var ErrNoDescription = errors.New("no job description text found")

// renderFunc loads a page in a browser
type renderFunc func(ctx context.Context, rawURL string, opts Options) (string, error)

// Describer fills in a missing job description from the posting URL
type Describer struct {
	opts       Options
	useBrowser bool
	render     renderFunc
	logger     *zap.Logger
}

// NewDescriber creates a Describer. With useBrowser, short HTTP results are re-fetched
// through headless Chrome.
func NewDescriber(opts Options, useBrowser bool, logger *zap.Logger) *Describer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Describer{
		opts:       opts,
		useBrowser: useBrowser,
		render:     Render,
		logger:     logger.Named("fetch"),
	}
}

// Describe returns the job description text found at rawURL
func (d *Describer) Describe(ctx context.Context, rawURL string) (string, error) {
	platform := DetectPlatform(rawURL)
	content, noise := ContentSelectors(platform), NoiseSelectors(platform)

	var text string
	page, err := Get(ctx, rawURL, d.opts)
	if err == nil {
		text, err = ExtractText(page.HTML, content, noise)
	}
	if err != nil && !d.useBrowser {
		return "", err
	}

	if d.useBrowser && len(strings.TrimSpace(text)) < MinContentLength {
		d.logger.Debug("falling back to browser rendering",
			zap.String("url", rawURL),
			zap.Int("http_chars", len(text)),
			zap.NamedError("http_error", err))

		html, renderErr := d.render(ctx, rawURL, d.opts)
		if renderErr != nil {
			if text != "" {
				return text, nil
			}
			return "", errors.Join(err, renderErr)
		}
		rendered, extractErr := ExtractText(html, content, noise)
		if extractErr != nil {
			return "", extractErr
		}
		if len(rendered) > len(text) {
			text = rendered
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: rawURL, Message: "extraction failed", Cause: ErrNoDescription}
	}
	d.logger.Debug("fetched job description",
		zap.String("url", rawURL),
		zap.String("platform", string(platform)),
		zap.Int("chars", len(text)))
	return text, nil
}
