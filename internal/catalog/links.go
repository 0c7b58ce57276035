package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"notes-store/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// ₹ amount embedded somewhere in the page body, e.g. "₹199" or "₹ 199.50".
var priceRe = regexp.MustCompile(`₹\s?(\d+(?:\.\d{1,2})?)`)

// linkSource scrapes hosted payment-link pages for product metadata. Each
// page carries og: meta tags for title/description/image and the price in
// the page body. A page that fails to fetch or parse is dropped, never
// fatal: the external markup is not under our control.
type linkSource struct {
	linksPath string
	currency  string
	client    *http.Client
	logger    *log.Logger
}

func NewLinkSource(linksPath, defaultCurrency string, client *http.Client, logger *log.Logger) Source {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &linkSource{linksPath: linksPath, currency: defaultCurrency, client: client, logger: logger}
}

func (s *linkSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.linksPath)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parse links file: %w", err)
	}

	products := make([]domain.Product, 0, len(links))
	for _, link := range links {
		p, err := s.scrape(ctx, link)
		if err != nil {
			s.logger.Printf("catalog links: dropping %s: %v", link, err)
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *linkSource) scrape(ctx context.Context, link string) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	title := metaContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	// Hosted pages title themselves "Pay for <product>".
	title = strings.TrimSpace(strings.TrimPrefix(title, "Pay for "))
	if title == "" {
		return nil, fmt.Errorf("no title found")
	}

	cents, ok := extractPriceCents(doc)
	if !ok {
		return nil, fmt.Errorf("no price found")
	}

	return &domain.Product{
		ID:          idFromLink(link),
		Title:       title,
		Description: metaContent(doc, "og:description"),
		PriceCents:  cents,
		Currency:    s.currency,
		CoverURL:    metaContent(doc, "og:image"),
	}, nil
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func extractPriceCents(doc *goquery.Document) (int64, bool) {
	// Prefer the amount input the payment form pre-fills.
	var text string
	doc.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v, ok := sel.Attr("value"); ok && strings.Contains(v, "₹") {
			text = v
			return false
		}
		return true
	})
	if text == "" {
		text = doc.Find("body").Text()
	}

	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	major, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return toCents(major), true
}

// idFromLink derives a stable catalog id from the payment-link URL: its last
// path segment, or the whole URL when the path is empty.
func idFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return link
	}
	return last
}
