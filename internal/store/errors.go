package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidResponse marks a response that was expected to be JSON but was
// not, typically an HTML error page from a proxy or misconfigured backend.
// Detecting it explicitly prevents half-parsed garbage from corrupting
// derived metrics.
var ErrInvalidResponse = errors.New("invalid response from SKU store")

// APIError is a non-2xx response from the store. Detail carries whatever
// diagnostic the store supplied; handlers surface a generic message to
// users and keep Detail for operator inspection.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("sku store returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("sku store returned %d", e.StatusCode)
}

// htmlErrorDetail extracts a short diagnostic from an HTML error page.
// Proxies tend to put the useful part in <title>; fall back to the first h1.
func htmlErrorDetail(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
