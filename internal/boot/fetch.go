package boot

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DataSelector locates the payload element in a boot page.
const DataSelector = "#data"

// PageClient fetches a page body.
type PageClient interface {
	GetText(ctx context.Context, url string) (string, error)
}

// Fetch loads the boot page at url and parses its payload. Failures
// degrade to the empty payload; the error says why.
func Fetch(ctx context.Context, client PageClient, url string) (Payload, error) {
	page, err := client.GetText(ctx, url)
	if err != nil {
		return Payload{}, fmt.Errorf("fetch boot page: %w", err)
	}
	return Extract(page)
}

// Extract parses the payload embedded in a boot page. A page without the
// data element boots with "{}".
func Extract(page string) (Payload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedBootPayload, err)
	}

	sel := doc.Find(DataSelector).First()
	if sel.Length() == 0 {
		return Parse("")
	}
	return Parse(sel.Text())
}
