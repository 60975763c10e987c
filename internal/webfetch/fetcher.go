// Package webfetch pulls readable text out of top-ranked result pages. Only
// a few URLs per request ever reach it; a skip-list filters out domains that
// consistently block bots or host nothing quotable, and JavaScript-heavy
// sites go through a reader proxy that renders them server-side.
package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/metrics"
)

// Result is the outcome of one deep fetch. Success false never carries an
// error up the pipeline; the assembler just falls back to the snippet.
type Result struct {
	Success     bool   `json:"success"`
	Content     string `json:"content"`
	Title       string `json:"title"`
	SnippetOnly bool   `json:"snippet_only"`
	Error       string `json:"error,omitempty"`
}

// skipDomains block scrapers or return paywalled/low-value markup. Not worth
// a fetch attempt.
var skipDomains = map[string]bool{
	"facebook.com":   true,
	"instagram.com":  true,
	"twitter.com":    true,
	"x.com":          true,
	"linkedin.com":   true,
	"youtube.com":    true,
	"quora.com":      true,
	"pinterest.com":  true,
	"reddit.com":     true,
	"wsj.com":        true,
	"bloomberg.com":  true,
}

// jsHeavyDomains render client-side; direct HTML is an empty shell. These go
// through the reader proxy instead.
var jsHeavyDomains = map[string]bool{
	"bookmyshow.com": true,
	"swiggy.com":     true,
	"zomato.com":     true,
	"paytm.com":      true,
	"makemytrip.com": true,
}

// Fetcher fetches and extracts page text.
type Fetcher struct {
	client    *http.Client
	readerURL string
	logger    *zap.Logger
}

// NewFetcher builds a fetcher. readerURL is the prefix of a reader proxy
// (e.g. "https://r.jina.ai/"); empty disables the JS-heavy path.
func NewFetcher(timeout time.Duration, readerURL string, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		readerURL: readerURL,
		logger:    logger,
	}
}

// Fetch retrieves the page and extracts up to maxChars of readable text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxChars int) Result {
	if maxChars <= 0 {
		maxChars = 2000
	}
	host := hostname(rawURL)
	if host == "" {
		return failure("invalid url")
	}
	if skipDomains[host] {
		metrics.WebFetches.WithLabelValues("skipped").Inc()
		return Result{Success: false, SnippetOnly: true, Error: "domain on skip list"}
	}

	target := rawURL
	if jsHeavyDomains[host] && f.readerURL != "" {
		target = f.readerURL + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure(err.Error())
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SorivaBot/1.0)")
	req.Header.Set("Accept-Language", "en-IN,en")

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.WebFetches.WithLabelValues("error").Inc()
		f.logger.Debug("webfetch failed", zap.String("url", rawURL), zap.Error(err))
		return failure(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.WebFetches.WithLabelValues("error").Inc()
		return failure(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.WebFetches.WithLabelValues("error").Inc()
		return failure(err.Error())
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content := extractText(doc, maxChars)
	if len(content) < 100 {
		// Too little text to be worth replacing the snippet.
		metrics.WebFetches.WithLabelValues("thin").Inc()
		return Result{Success: false, Title: title, SnippetOnly: true, Error: "page too thin"}
	}

	metrics.WebFetches.WithLabelValues("ok").Inc()
	return Result{Success: true, Content: content, Title: title}
}

// extractText walks content-bearing elements in document order, skipping
// navigation and boilerplate containers.
func extractText(doc *goquery.Document, maxChars int) string {
	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()

	var sb strings.Builder
	doc.Find("p, li").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) < 30 {
			return true
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(text)
		return sb.Len() < maxChars
	})

	out := sb.String()
	if len(out) > maxChars {
		// Back up to a rune boundary; a hard byte cut can split Devanagari
		// or other multi-byte text mid-character.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}
