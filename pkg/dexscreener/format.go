package dexscreener

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatProfile summarises a token from its most liquid pair.
func FormatProfile(address string, pairs []Pair) string {
	if len(pairs) == 0 {
		return fmt.Sprintf("No trading pairs found for token %s.", address)
	}

	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].liquidityUSD() > sorted[j].liquidityUSD()
	})
	top := sorted[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Token: %s (%s)\n", top.BaseToken.Name, top.BaseToken.Symbol)
	fmt.Fprintf(&b, "Address: %s\n", top.BaseToken.Address)
	fmt.Fprintf(&b, "Chain: %s\n", top.ChainID)
	fmt.Fprintf(&b, "Price: $%s\n", orNA(top.PriceUSD))
	fmt.Fprintf(&b, "24h Change: %.2f%%\n", top.PriceChange.H24)
	fmt.Fprintf(&b, "24h Volume: %s\n", usd(top.Volume.H24))
	fmt.Fprintf(&b, "Liquidity: %s\n", usd(top.liquidityUSD()))
	fmt.Fprintf(&b, "FDV: %s\n", usd(top.FDV))
	fmt.Fprintf(&b, "Market Cap: %s\n", usd(top.MarketCap))
	fmt.Fprintf(&b, "Pairs: %d\n", len(pairs))
	fmt.Fprintf(&b, "URL: %s", top.URL)
	return b.String()
}

// FormatPair describes a single pair.
func FormatPair(p Pair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pair: %s/%s on %s (%s)\n", p.BaseToken.Symbol, p.QuoteToken.Symbol, p.DexID, p.ChainID)
	fmt.Fprintf(&b, "Pair Address: %s\n", p.PairAddress)
	fmt.Fprintf(&b, "Price: $%s (%s %s)\n", orNA(p.PriceUSD), orNA(p.PriceNative), p.QuoteToken.Symbol)
	fmt.Fprintf(&b, "24h Change: %.2f%%\n", p.PriceChange.H24)
	fmt.Fprintf(&b, "24h Volume: %s\n", usd(p.Volume.H24))
	fmt.Fprintf(&b, "24h Txns: %d buys / %d sells\n", p.Txns.H24.Buys, p.Txns.H24.Sells)
	fmt.Fprintf(&b, "Liquidity: %s\n", usd(p.liquidityUSD()))
	if p.PairCreatedAt > 0 {
		fmt.Fprintf(&b, "Created: %s\n", time.UnixMilli(p.PairCreatedAt).UTC().Format(time.DateOnly))
	}
	fmt.Fprintf(&b, "URL: %s", p.URL)
	return b.String()
}

// FormatOrders lists paid orders for a token.
func FormatOrders(chainID, address string, orders []Order) string {
	if len(orders) == 0 {
		return fmt.Sprintf("No orders found for token %s on %s.", address, chainID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Orders for %s on %s:", address, chainID)
	for _, o := range orders {
		paid := "unpaid"
		if o.PaymentTimestamp > 0 {
			paid = "paid " + time.UnixMilli(o.PaymentTimestamp).UTC().Format(time.DateTime)
		}
		fmt.Fprintf(&b, "\n- %s: %s (%s)", o.Type, o.Status, paid)
	}
	return b.String()
}

func usd(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
