// Package dexscreener looks up token and pair data from the DEX Screener API
// and formats it for the terminal.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the DEX Screener public API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (e.g., "https://api.dexscreener.com").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Pair is a trading pair as returned by the /latest/dex endpoints.
type Pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   Token  `json:"baseToken"`
	QuoteToken  Token  `json:"quoteToken"`
	PriceNative string `json:"priceNative"`
	PriceUSD    string `json:"priceUsd"`
	Txns        struct {
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity,omitempty"`
	FDV           float64 `json:"fdv"`
	MarketCap     float64 `json:"marketCap"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
}

func (p Pair) liquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}

// Order is a paid order (profile, ad, boost) for a token.
type Order struct {
	Type             string `json:"type"`
	Status           string `json:"status"`
	PaymentTimestamp int64  `json:"paymentTimestamp"`
}

// Pairs returns every pair trading the token at address.
func (c *Client) Pairs(ctx context.Context, address string) ([]Pair, error) {
	var resp pairsResponse
	if err := c.get(ctx, "/latest/dex/tokens/"+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

// Pair returns a single pair.
func (c *Client) Pair(ctx context.Context, chainID, pairID string) (*Pair, error) {
	var resp pairsResponse
	if err := c.get(ctx, "/latest/dex/pairs/"+url.PathEscape(chainID)+"/"+url.PathEscape(pairID), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, nil
	}
	return &resp.Pairs[0], nil
}

// Orders returns the paid orders for a token.
func (c *Client) Orders(ctx context.Context, chainID, address string) ([]Order, error) {
	var orders []Order
	if err := c.get(ctx, "/orders/v1/"+url.PathEscape(chainID)+"/"+url.PathEscape(address), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// TokenProfile implements commands.TokenLookup.
func (c *Client) TokenProfile(ctx context.Context, address string) (string, error) {
	pairs, err := c.Pairs(ctx, address)
	if err != nil {
		return "", err
	}
	return FormatProfile(address, pairs), nil
}

// TokenOrders implements commands.TokenLookup.
func (c *Client) TokenOrders(ctx context.Context, chainID, address string) (string, error) {
	orders, err := c.Orders(ctx, chainID, address)
	if err != nil {
		return "", err
	}
	return FormatOrders(chainID, address, orders), nil
}

// PairInfo implements commands.TokenLookup.
func (c *Client) PairInfo(ctx context.Context, chainID, pairID string) (string, error) {
	pair, err := c.Pair(ctx, chainID, pairID)
	if err != nil {
		return "", err
	}
	if pair == nil {
		return fmt.Sprintf("No pair %s found on %s.", pairID, chainID), nil
	}
	return FormatPair(*pair), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dexscreener returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
