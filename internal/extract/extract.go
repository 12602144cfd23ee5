// Package extract reduces web pages to the plain text of their paragraph
// content.
package extract

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; classify-cli/1.0)"
	defaultMaxBody   = 512 * 1024
)

// StatusError reports a non-success HTTP response. Callers treat it as a
// recoverable per-row condition rather than a failure of the whole run.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("extract: %s returned status %d", e.URL, e.StatusCode)
}

// IsCertError reports whether err stems from TLS certificate verification,
// so callers can surface it apart from generic network failures.
func IsCertError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	return errors.As(err, &invalid)
}

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	// Timeout bounds the whole request, connect through body read.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
	// InsecureSkipVerify disables TLS certificate verification. Verification
	// stays on unless this is set explicitly; callers enabling it should log
	// the weakening at startup.
	InsecureSkipVerify bool
}

// Extractor fetches URLs and reduces pages to their paragraph text.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		TLSHandshakeTimeout: opts.Timeout,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Extractor{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
	}
}

// Extract issues a single GET against targetURL and returns the text of
// every <p> element in document order, joined with single spaces and
// trimmed. An empty string with a nil error means the page has no paragraph
// text. Non-success statuses return a *StatusError; transport failures come
// back wrapped for the caller to classify. No retries.
func (e *Extractor) Extract(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrapf(err, "extract: create request for %s", targetURL)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "extract: fetch %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: targetURL, StatusCode: resp.StatusCode}
	}

	body := decodeCharset(io.LimitReader(resp.Body, e.maxBody), resp.Header.Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", eris.Wrapf(err, "extract: parse %s", targetURL)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// decodeCharset wraps r with a decoder for the charset declared in the
// Content-Type header. Missing or unknown charsets pass through as UTF-8.
func decodeCharset(r io.Reader, contentType string) io.Reader {
	if contentType == "" {
		return r
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	name, ok := params["charset"]
	if !ok || strings.EqualFold(name, "utf-8") {
		return r
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return r
	}
	return enc.NewDecoder().Reader(r)
}
