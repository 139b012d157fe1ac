package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	endpoint       = "https://html.duckduckgo.com/html/"
	requestTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) leads-agent/1.0"
)

// ErrNoResults is returned when a query produced an empty result page
var ErrNoResults = errors.New("no search results")

// Result is a single web search hit
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// DuckDuckGo queries the DuckDuckGo HTML endpoint, which needs no API key
// and returns server-rendered markup we can walk directly.
type DuckDuckGo struct {
	httpClient *http.Client
	maxResults int
	logger     *zap.Logger
}

// NewDuckDuckGo creates a new DuckDuckGo search client
func NewDuckDuckGo(maxResults int, logger *zap.Logger) *DuckDuckGo {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &DuckDuckGo{
		httpClient: &http.Client{Timeout: requestTimeout},
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search runs a query and renders the top results as a compact text block
// suitable for a tool response
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	results, err := d.Results(ctx, query)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// Results runs a query and returns structured hits
func (d *DuckDuckGo) Results(ctx context.Context, query string) ([]Result, error) {
	reqURL := endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := parseResults(doc, d.maxResults)
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	d.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}

// parseResults walks the result page. Each hit is an anchor with class
// result__a; the matching snippet carries class result__snippet.
func parseResults(doc *html.Node, max int) []Result {
	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			results = append(results, Result{
				Title: nodeText(n),
				URL:   resolveHref(attr(n, "href")),
			})
		}
		if n.Type == html.ElementNode && hasClass(n, "result__snippet") && len(results) > 0 {
			last := &results[len(results)-1]
			if last.Snippet == "" {
				last.Snippet = nodeText(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// resolveHref unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...)
// to the destination URL
func resolveHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if dest, err := url.QueryUnescape(uddg); err == nil {
			return dest
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
