package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const resultsPage = `
<html><body>
<div class="results">
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.io%2F&amp;rut=abc">Acme - Cloud Platform</a>
    </h2>
    <a class="result__snippet">Acme builds a B2B SaaS platform for cloud migrations.</a>
  </div>
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="https://example.com/about">Example About Page</a>
    </h2>
    <a class="result__snippet">Everything about Example, Inc.</a>
  </div>
  <div class="result">
    <h2 class="result__title">
      <a class="result__a" href="https://third.example.org">Third Result</a>
    </h2>
  </div>
</div>
</body></html>`

func parsePage(t *testing.T, page string, max int) []Result {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return parseResults(doc, max)
}

func TestParseResults(t *testing.T) {
	results := parsePage(t, resultsPage, 10)
	require.Len(t, results, 3)

	assert.Equal(t, "Acme - Cloud Platform", results[0].Title)
	assert.Equal(t, "https://acme.io/", results[0].URL)
	assert.Equal(t, "Acme builds a B2B SaaS platform for cloud migrations.", results[0].Snippet)

	assert.Equal(t, "Example About Page", results[1].Title)
	assert.Equal(t, "https://example.com/about", results[1].URL)

	assert.Equal(t, "Third Result", results[2].Title)
	assert.Empty(t, results[2].Snippet)
}

func TestParseResultsRespectsMax(t *testing.T) {
	results := parsePage(t, resultsPage, 2)
	assert.Len(t, results, 2)
}

func TestParseResultsEmptyPage(t *testing.T) {
	results := parsePage(t, `<html><body><div class="no-results">No results.</div></body></html>`, 5)
	assert.Empty(t, results)
}

func TestResolveHref(t *testing.T) {
	assert.Equal(t, "https://acme.io/",
		resolveHref("//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.io%2F&rut=abc"))
	assert.Equal(t, "https://example.com/x", resolveHref("https://example.com/x"))
	assert.Equal(t, "https://cdn.example.com/y", resolveHref("//cdn.example.com/y"))
}
