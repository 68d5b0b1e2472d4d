// Package barcode enriches scanned codes with a product name and category
// taken from public product databases. Lookups never fail: a missing product,
// a timeout or a malformed answer all yield an empty Result.
package barcode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go-pos-ws/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Result is the lookup answer. Both fields are nil when nothing was found.
type Result struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
}

// Found reports whether a name was resolved.
func (r Result) Found() bool { return r.Name != nil }

// Cache stores answers by code. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, code string) (Result, bool)
	Set(ctx context.Context, code string, r Result)
}

type Options struct {
	OpenFoodFactsURL string
	UPCItemDBURL     string
	Timeout          time.Duration
	Cache            Cache
	HTTPClient       *http.Client
}

// Client queries Open Food Facts first and UPCItemDB as fallback.
type Client struct {
	offURL  string
	upcURL  string
	timeout time.Duration
	cache   Cache
	http    *http.Client
}

func NewClient(opts Options) *Client {
	c := &Client{
		offURL:  strings.TrimRight(opts.OpenFoodFactsURL, "/"),
		upcURL:  strings.TrimRight(opts.UPCItemDBURL, "/"),
		timeout: opts.Timeout,
		cache:   opts.Cache,
		http:    opts.HTTPClient,
	}
	if c.offURL == "" {
		c.offURL = "https://world.openfoodfacts.org"
	}
	if c.upcURL == "" {
		c.upcURL = "https://api.upcitemdb.com"
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// Lookup resolves code. An empty code short-circuits to an empty Result.
func (c *Client) Lookup(ctx context.Context, code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}
	}
	if c.cache != nil {
		if r, ok := c.cache.Get(ctx, code); ok {
			metrics.BarcodeLookups.WithLabelValues("cache").Inc()
			return r
		}
	}

	r, source := c.lookupOpenFoodFacts(ctx, code), "openfoodfacts"
	if !r.Found() {
		r, source = c.lookupUPCItemDB(ctx, code), "upcitemdb"
	}
	if !r.Found() {
		source = "none"
	}
	metrics.BarcodeLookups.WithLabelValues(source).Inc()

	if c.cache != nil && r.Found() {
		c.cache.Set(ctx, code, r)
	}
	return r
}

func (c *Client) lookupOpenFoodFacts(ctx context.Context, code string) Result {
	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json?fields=product_name,categories_tags",
		c.offURL, url.PathEscape(code))
	body, ok := c.get(ctx, endpoint)
	if !ok {
		return Result{}
	}
	name := gjson.GetBytes(body, "product.product_name").String()
	if name == "" {
		return Result{}
	}
	r := Result{Name: &name}
	if raw := gjson.GetBytes(body, "product.categories_tags.0").String(); raw != "" {
		category := NormalizeCategory(raw)
		r.Category = &category
	}
	return r
}

func (c *Client) lookupUPCItemDB(ctx context.Context, code string) Result {
	endpoint := fmt.Sprintf("%s/prod/trial/lookup?upc=%s", c.upcURL, url.QueryEscape(code))
	body, ok := c.get(ctx, endpoint)
	if !ok {
		return Result{}
	}
	title := gjson.GetBytes(body, "items.0.title").String()
	if title == "" {
		return Result{}
	}
	r := Result{Name: &title}
	if category := gjson.GetBytes(body, "items.0.category").String(); category != "" {
		r.Category = &category
	}
	return r
}

// get performs a bounded GET and returns the body of a 2xx JSON answer.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", endpoint).Msg("barcode lookup failed")
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || !gjson.ValidBytes(body) {
		return nil, false
	}
	return body, true
}

var langPrefix = regexp.MustCompile(`^[a-z]{2}:`)

// NormalizeCategory turns a taxonomy tag such as "en:soft-drinks" into "soft drinks".
func NormalizeCategory(tag string) string {
	return strings.ReplaceAll(langPrefix.ReplaceAllString(tag, ""), "-", " ")
}
