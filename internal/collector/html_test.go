package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyPage = `<html><head><title>AAPL history</title></head><body>
<table class="summary"><tr><td>Market cap</td><td>3T</td></tr></table>
<table class="table yf-1jecxey">
  <thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Adj Close</th><th>Volume</th></tr></thead>
  <tbody>
    <tr><td>Jan 4, 2024</td><td>182.15</td><td>183.09</td><td>180.88</td><td><span>$1,181.91</span></td><td>181.18</td><td>71,983,600</td></tr>
    <tr><td>Feb 9, 2024</td><td colspan="6">0.24 Dividend</td></tr>
    <tr><td>Jan 3, 2024</td><td>184.22</td><td>185.88</td><td>183.43</td><td>184.25</td><td>183.53</td><td>58,414,500</td></tr>
    <tr><td>Jan 2, 2024</td><td>187.15</td><td>188.44</td><td>183.89</td><td>-</td><td>-</td><td>82,488,700</td></tr>
    <tr><td>not a date</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td></tr>
  </tbody>
</table></body></html>`

func TestParseHistoryTable(t *testing.T) {
	obs, err := ParseHistoryTable(strings.NewReader(historyPage))
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), obs[0].Date)
	require.True(t, obs[0].Price.Valid)
	assert.True(t, decimal.RequireFromString("1181.91").Equal(obs[0].Price.Decimal))
	assert.True(t, decimal.RequireFromString("184.25").Equal(obs[1].Price.Decimal))
	assert.False(t, obs[2].Price.Valid, "a dash close is missing, not zero")
}

func TestParseHistoryTable_NoTable(t *testing.T) {
	_, err := ParseHistoryTable(strings.NewReader(`<html><body><p>consent wall</p></body></html>`))
	assert.Error(t, err)
}

func TestHTMLFetcher_FetchHistory(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotUA = r.URL.Path, r.UserAgent()
		w.Write([]byte(historyPage))
	}))
	defer srv.Close()

	f := NewHTMLFetcher("")
	f.BaseURL = srv.URL
	obs, err := f.FetchHistory(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, "/quote/AAPL/history/", gotPath)
	assert.Contains(t, gotUA, "Mozilla/5.0")

}

func TestHTMLFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewHTMLFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchHistory(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "status 429")
}
