// Package fetch resolves an item URL to a (title, price, currency) snapshot.
// It reads the standard product metadata most shops emit (OpenGraph and
// schema.org meta tags); anything beyond that is shop-specific scraping and
// stays out of this service.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"pricewatch-service/internal/application"
	"pricewatch-service/internal/domain"
)

var _ application.Fetcher = (*HTTPFetcher)(nil)

var (
	ErrNoPrice = errors.New("fetch: no price in page metadata")
	ErrNoTitle = errors.New("fetch: no title in page")
)

const maxBodyBytes = 2 << 20 // product pages past 2MB are not worth parsing

type HTTPFetcher struct {
	Client          *http.Client
	UserAgent       string
	DefaultCurrency string
}

var (
	// property/name/itemprop before or after content, both appear in the wild
	metaKeyFirstRe = regexp.MustCompile(`(?i)<meta[^>]+(?:property|name|itemprop)\s*=\s*["']([^"']+)["'][^>]*\scontent\s*=\s*["']([^"']*)["']`)
	metaKeyLastRe  = regexp.MustCompile(`(?i)<meta[^>]+content\s*=\s*["']([^"']*)["'][^>]*\s(?:property|name|itemprop)\s*=\s*["']([^"']+)["']`)
	titleTagRe     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	numberRe       = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

var priceKeys = []string{"product:price:amount", "og:price:amount", "price", "twitter:data1"}
var currencyKeys = []string{"product:price:currency", "og:price:currency", "pricecurrency"}

func (f *HTTPFetcher) Fetch(ctx context.Context, itemID string) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itemID, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch: create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fetch: read body: %w", err)
	}
	return f.parse(string(body))
}

func (f *HTTPFetcher) parse(page string) (domain.Snapshot, error) {
	meta := map[string]string{}
	for _, m := range metaKeyFirstRe.FindAllStringSubmatch(page, -1) {
		key := strings.ToLower(m[1])
		if _, seen := meta[key]; !seen {
			meta[key] = m[2]
		}
	}
	for _, m := range metaKeyLastRe.FindAllStringSubmatch(page, -1) {
		key := strings.ToLower(m[2])
		if _, seen := meta[key]; !seen {
			meta[key] = m[1]
		}
	}

	title := meta["og:title"]
	if title == "" {
		if m := titleTagRe.FindStringSubmatch(page); m != nil {
			title = m[1]
		}
	}
	title = strings.TrimSpace(html.UnescapeString(title))
	if title == "" {
		return domain.Snapshot{}, ErrNoTitle
	}

	var price decimal.Decimal
	found := false
	for _, key := range priceKeys {
		raw, ok := meta[key]
		if !ok {
			continue
		}
		p, err := parsePrice(raw)
		if err != nil {
			continue
		}
		price, found = p, true
		break
	}
	if !found || price.Sign() <= 0 {
		return domain.Snapshot{}, ErrNoPrice
	}

	currency := f.DefaultCurrency
	for _, key := range currencyKeys {
		if c, ok := meta[key]; ok && c != "" {
			currency = strings.ToUpper(c)
			break
		}
	}

	return domain.Snapshot{Title: title, Price: price, Currency: currency}, nil
}

// parsePrice pulls the first numeric token out of a content attribute,
// tolerating currency symbols, spaces and either separator convention.
// The decimal separator is whichever of '.' or ',' appears last.
func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.NewReplacer(" ", "", " ", "").Replace(raw)
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		i := strings.LastIndex(s, ",")
		s = strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}
	m := numberRe.FindString(s)
	if m == "" {
		return decimal.Decimal{}, ErrNoPrice
	}
	return decimal.NewFromString(m)
}
