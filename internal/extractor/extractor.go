package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricewatch/product-tracker/internal/models"
)

const (
	cardSelector       = "li.s-card"
	attributesSelector = "div.su-card-container__attributes"
	priceSelector      = "span.s-card__price"
	titleSelector      = "div.s-card__title"
	imageLinkSelector  = "a.image-treatment"

	defaultTitle  = "Unknown Product"
	notFoundNotes = "Only auctions or no valid listings found."
)

// Extract scans the search results markup for the first non-auction listing
// that carries a usable price and returns it as a CheckResult for query.
//
// Cards are visited in document order and the first qualifying card wins;
// there is no comparison across candidates. A card is disqualified when its
// attributes block mentions "bid" (auction) or when none of its price spans
// holds a plain dollar price. Missing titles and links are tolerated.
func Extract(html, query string) (models.CheckResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.CheckResult{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := models.NewCheckResult(query)

	doc.Find(cardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if isAuction(card) {
			return true
		}

		price := firstValidPrice(card)
		if price == "" {
			return true
		}

		title := strings.TrimSpace(card.Find(titleSelector).First().Text())
		if title == "" {
			title = defaultTitle
		}

		productURL := ""
		if href, ok := card.Find(imageLinkSelector).First().Attr("href"); ok {
			productURL = href
		}

		result.ProductName = title
		result.IsFound = true
		result.ProductURL = productURL
		result.Price = price
		result.Notes = fmt.Sprintf("Product found. Price: %s", price)
		return false
	})

	if !result.IsFound {
		result.Notes = notFoundNotes
	}

	return result, nil
}

// isAuction reports whether the card's attributes block marks it as an
// auction listing. This check is independent of the price check; both must
// pass for a card to qualify.
func isAuction(card *goquery.Selection) bool {
	attrs := card.Find(attributesSelector)
	if attrs.Length() == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(attrs.Text())), "bid")
}

// firstValidPrice returns the text of the first price span containing a
// dollar sign and no bid wording, or "" when the card has no usable price.
func firstValidPrice(card *goquery.Selection) string {
	price := ""
	card.Find(priceSelector).EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if text == "" || !strings.Contains(text, "$") {
			return true
		}
		if strings.Contains(strings.ToLower(text), "bid") {
			return true
		}
		price = text
		return false
	})
	return price
}
