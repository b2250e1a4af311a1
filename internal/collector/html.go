package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

const (
	yahooWebURL = "https://finance.yahoo.com"
	browserUA   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Date, Open, High, Low, Close, Adj Close, Volume
	historyCols     = 7
	historyCloseCol = 4
)

// HTMLFetcher scrapes the daily close column of Yahoo's history page.
type HTMLFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewHTMLFetcher creates a history page scraper with optional proxy support.
func NewHTMLFetcher(proxyURL string) *HTMLFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTMLFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: yahooWebURL,
	}
}

func (f *HTMLFetcher) Name() string { return "html" }

func (f *HTMLFetcher) FetchHistory(ctx context.Context, symbol string) ([]model.Observation, error) {
	u := fmt.Sprintf("%s/quote/%s/history/", f.BaseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history page fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history page: status %d", resp.StatusCode)
	}
	return ParseHistoryTable(resp.Body)
}

// ParseHistoryTable reads the first table whose rows carry the seven history
// columns and returns the close of each. Rows with fewer cells, such as
// dividend and split notes, and rows with an unreadable date are skipped.
func ParseHistoryTable(r io.Reader) ([]model.Observation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse history page: %w", err)
	}
	for _, table := range findAll(doc, atom.Table) {
		var out []model.Observation
		for _, tr := range findAll(table, atom.Tr) {
			cells := findAll(tr, atom.Td)
			if len(cells) < historyCols {
				continue
			}
			date, err := parseDate(text(cells[0]))
			if err != nil {
				continue
			}
			o := model.Observation{Date: date}
			if p, err := parsePrice(text(cells[historyCloseCol])); err == nil {
				o.Price = decimal.NewNullDecimal(p)
			}
			out = append(out, o)
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, fmt.Errorf("history table not found")
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
				// History tables are not nested.
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
