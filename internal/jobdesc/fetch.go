// Package jobdesc turns a job posting URL into plain job description text.
package jobdesc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; ResumeEnhancer/1.0)"
	maxBodyBytes     = 4 << 20
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs
	// or that resolve to a non-public address.
	ErrInvalidURL = errors.New("invalid job posting URL")
	// ErrEmptyPosting is returned when no text could be found on the page.
	ErrEmptyPosting = errors.New("job posting has no readable text")
)

// FetchError reports a failed download.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch job posting %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch job posting %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads job postings.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher using client. A nil client gets a 20s timeout
// and a dialer that refuses non-public addresses.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = PublicClient()
	}
	return &Fetcher{client: client, userAgent: defaultUserAgent}
}

// PublicClient returns an http.Client whose connections may only reach public
// unicast addresses. The check runs on the resolved IP of every dial, so DNS
// names and redirects pointing inward are refused as well.
func PublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: refuseNonPublic,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: defaultTimeout, Transport: transport}
}

func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(addr) {
		return fmt.Errorf("%w: address %s is not public", ErrInvalidURL, addr)
	}
	return nil
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified() &&
		!sharedAddressSpace.Contains(addr)
}

// 100.64.0.0/10, carrier-grade NAT.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetch downloads rawURL and returns the main text of the posting.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", &FetchError{URL: parsed.String(), Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			return "", err
		}
		return "", &FetchError{URL: parsed.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: parsed.String(), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: parsed.String(), Err: err}
	}

	var text string
	if strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "text/plain") {
		text = cleanWhitespace(string(body))
	} else {
		text, err = ExtractMainText(string(body))
		if err != nil {
			return "", err
		}
	}
	if text == "" {
		return "", ErrEmptyPosting
	}
	return text, nil
}

var noiseSelector = strings.Join([]string{
	"nav", "footer", "header", "script", "style", "noscript", "form", "iframe",
	".ad", ".advertisement", ".ads", ".sidebar", ".cookie-banner", ".popup",
	".apply-button", ".similar-jobs", ".share-buttons",
}, ", ")

// postingSelectors are tried in order; the first match is the posting body.
var postingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	".description__text",
	"#jobDescriptionText",
	"main",
	"article",
	".content",
	"#content",
}

// ExtractMainText parses a job posting page and returns its readable text,
// one non-empty line per block.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse job posting: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	content := doc.Find("body")
	for _, selector := range postingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	// Block elements end a line so list items do not run together.
	content.Find("p, li, br, div, h1, h2, h3, h4, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return cleanWhitespace(content.Text()), nil
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
