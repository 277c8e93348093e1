// Package quotes optionally enriches the simulation with live prices. Every
// failure (missing key, unknown name, network error, bad payload) collapses
// into ErrUnavailable; callers always fall back to simulated prices and never
// surface a quote failure to the player.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnavailable means no live price could be fetched. It carries no detail
// on purpose: the only correct reaction is to keep simulating.
var ErrUnavailable = errors.New("live quote unavailable")

// symbolMap translates the game's display names into real ticker symbols.
// Names without an entry simply stay simulated.
var symbolMap = map[string]string{
	"Swiss Life AG":    "SLHN.SW",
	"Spotify":          "SPOT",
	"SolarCity":        "TSLA", // acquired by Tesla
	"UBS AG":           "UBS",
	"SHELL":            "SHEL",
	"Card Services AG": "V",
	"Apple":            "AAPL",
	"Samsung":          "005930.KS",
	"Nestlé":           "NESN.SW",
	"Microsoft":        "MSFT",
	"Amazon":           "AMZN",
	"Google":           "GOOGL",
	"Facebook":         "META",
	"Tesla":            "TSLA",
	"Netflix":          "NFLX",
}

// Symbol returns the real ticker for a display name, or false.
func Symbol(name string) (string, bool) {
	s, ok := symbolMap[name]
	return s, ok
}

const (
	defaultFinnhubURL      = "https://finnhub.io/api/v1"
	defaultAlphaVantageURL = "https://www.alphavantage.co"
	defaultTimeout         = 5 * time.Second
)

// Client fetches live quotes, Finnhub first, Alpha Vantage as fallback.
// A Client with no keys configured reports every quote as unavailable.
type Client struct {
	FinnhubKey      string
	AlphaVantageKey string

	// FinnhubURL and AlphaVantageURL override the API hosts in tests.
	FinnhubURL      string
	AlphaVantageURL string

	// HTTP is the underlying client. Its timeout bounds each request so a
	// hung provider cannot stall the caller.
	HTTP *http.Client
}

// New returns a client with a bounded default timeout.
func New(finnhubKey, alphaVantageKey string) *Client {
	return &Client{
		FinnhubKey:      finnhubKey,
		AlphaVantageKey: alphaVantageKey,
		HTTP:            &http.Client{Timeout: defaultTimeout},
	}
}

// Enabled reports whether at least one provider is configured.
func (c *Client) Enabled() bool {
	return c.FinnhubKey != "" || c.AlphaVantageKey != ""
}

// Price fetches the current live price for a stock by its display name.
func (c *Client) Price(ctx context.Context, stockName string) (float64, error) {
	symbol, ok := Symbol(stockName)
	if !ok {
		return 0, ErrUnavailable
	}

	if c.FinnhubKey != "" {
		if price, err := c.finnhub(ctx, symbol); err == nil {
			return price, nil
		}
	}
	if c.AlphaVantageKey != "" {
		if price, err := c.alphaVantage(ctx, symbol); err == nil {
			return price, nil
		}
	}
	return 0, ErrUnavailable
}

func (c *Client) finnhub(ctx context.Context, symbol string) (float64, error) {
	base := c.FinnhubURL
	if base == "" {
		base = defaultFinnhubURL
	}
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s", base, url.QueryEscape(symbol), url.QueryEscape(c.FinnhubKey))

	var body struct {
		Current float64 `json:"c"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, err
	}
	if body.Current <= 0 {
		return 0, ErrUnavailable
	}
	return body.Current, nil
}

func (c *Client) alphaVantage(ctx context.Context, symbol string) (float64, error) {
	base := c.AlphaVantageURL
	if base == "" {
		base = defaultAlphaVantageURL
	}
	u := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", base, url.QueryEscape(symbol), url.QueryEscape(c.AlphaVantageKey))

	var body struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(body.Quote["05. price"], 64)
	if err != nil || price <= 0 {
		return 0, ErrUnavailable
	}
	return price, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ErrUnavailable
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ErrUnavailable
	}
	return nil
}
