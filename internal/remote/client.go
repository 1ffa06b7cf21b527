// Package remote talks to the central wiki's action API: resolving the
// canonical URL of a user page and fetching its rendered form. Transport
// failures never escape this package as errors; callers get nil/"" and
// fall back to the normal missing-page behavior.
package remote

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/wikimedia/globaluserpage/pkg/httputil"
)

// Client executes requests against one MediaWiki API endpoint.
type Client struct {
	apiURL string
	http   *httputil.Client
}

// NewClient creates a client for the api.php endpoint at apiURL.
func NewClient(apiURL string, timeout time.Duration) *Client {
	cfg := httputil.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	return &Client{
		apiURL: apiURL,
		http:   httputil.NewClient(cfg),
	}
}

// do executes one API request and decodes the JSON envelope into target.
func (c *Client) do(ctx context.Context, params url.Values, target any) error {
	params.Set("format", "json")
	requestURL := c.apiURL + "?" + params.Encode()
	slog.Debug("Making API request", "url", requestURL)

	resp, err := c.http.GetWithContext(ctx, requestURL)
	if err != nil {
		return err
	}

	return httputil.DecodeJSONResponse(resp, target)
}

// PageInfoURL asks the API for the canonical URL of a page. Returns ""
// if the request fails or the page is unknown.
func (c *Client) PageInfoURL(ctx context.Context, prefixedTitle string) string {
	params := url.Values{
		"action":        {"query"},
		"titles":        {prefixedTitle},
		"prop":          {"info"},
		"inprop":        {"url"},
		"formatversion": {"2"},
	}

	var resp pageInfoResponse
	if err := c.do(ctx, params, &resp); err != nil {
		slog.Warn("Page info request failed", "title", prefixedTitle, "error", err)
		return ""
	}
	if len(resp.Query.Pages) == 0 {
		return ""
	}

	return resp.Query.Pages[0].CanonicalURL
}

// Parse renders a page through action=parse for the given language and
// skin. The page is transcluded rather than parsed directly so that the
// rendering matches what the central wiki would serve. Returns nil on
// any failure.
func (c *Client) Parse(ctx context.Context, prefixedTitle, lang, skin string) *ParsedPage {
	params := url.Values{
		"action":             {"parse"},
		"title":              {prefixedTitle},
		"text":               {"{{:" + prefixedTitle + "}}"},
		"disableeditsection": {"1"},
		"disablelimitreport": {"1"},
		"uselang":            {lang},
		"useskin":            {skin},
		"prop":               {"text|modules|jsconfigvars|indicators|sections|externallinks"},
		"formatversion":      {"2"},
	}

	var resp parseResponse
	if err := c.do(ctx, params, &resp); err != nil {
		slog.Warn("Parse request failed", "title", prefixedTitle, "error", err)
		return nil
	}

	return resp.Parse
}
