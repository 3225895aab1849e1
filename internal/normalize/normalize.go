// Package normalize turns provider snapshots into presentation-ready view
// models with a fixed field layout per provider. Rendering is total: missing
// or malformed data degrades to N/A values, never to an error, so a card is
// always displayable once its provider answered.
package normalize

import (
	"fmt"

	"tokencard/internal/domain"
	"tokencard/internal/provider"
)

// Snapshot builds the ViewModel for a snapshot produced by the named
// provider. The field list for a given provider is fixed, so consecutive
// refreshes of the same card always render the same labels in the same
// order.
func Snapshot(snap *domain.MarketSnapshot, providerName string) domain.ViewModel {
	switch providerName {
	case provider.NameWalletAnalytics:
		return walletViewModel(snap, providerName)
	case provider.NamePumpFun:
		return nameLookupViewModel(snap, providerName)
	default:
		return marketViewModel(snap, providerName)
	}
}

func marketViewModel(snap *domain.MarketSnapshot, providerName string) domain.ViewModel {
	return domain.ViewModel{
		Title:        title(snap),
		LinkURL:      snap.CanonicalURL,
		ThumbnailURL: snap.ImageURL,
		Fields: []domain.Field{
			{Label: "Price (USD)", Value: usdPrice(snap.PriceUsd), Inline: true},
			{Label: "Price (Native)", Value: nativePrice(snap.PriceNative), Inline: true},
			{Label: "Market Cap", Value: usdAmount(snap.MarketCapUsd), Inline: true},
			{Label: "Volume (24H)", Value: usdAmount(snap.Volume24hUsd), Inline: true},
			{Label: "Buys (24H)", Value: count(snap.Buys24h), Inline: true},
			{Label: "Sells (24H)", Value: count(snap.Sells24h), Inline: true},
			{Label: "Liquidity (USD)", Value: usdAmount(snap.LiquidityUsd), Inline: true},
			{Label: "Fully Diluted Valuation (FDV)", Value: usdAmount(snap.FdvUsd), Inline: true},
		},
		FooterText:     footer(providerName),
		SourceProvider: providerName,
	}
}

func nameLookupViewModel(snap *domain.MarketSnapshot, providerName string) domain.ViewModel {
	return domain.ViewModel{
		Title:        title(snap),
		LinkURL:      snap.CanonicalURL,
		ThumbnailURL: snap.ImageURL,
		Fields: []domain.Field{
			{Label: "Price (USD)", Value: usdPrice(snap.PriceUsd), Inline: true},
			{Label: "Market Cap", Value: usdAmount(snap.MarketCapUsd), Inline: true},
			{Label: "Volume (24H)", Value: usdAmount(snap.Volume24hUsd), Inline: true},
		},
		FooterText:     footer(providerName),
		SourceProvider: providerName,
	}
}

func walletViewModel(snap *domain.MarketSnapshot, providerName string) domain.ViewModel {
	b := snap.Bundle
	if b == nil {
		b = &domain.BundleStats{}
	}
	return domain.ViewModel{
		Title: "Wallet " + shortAddress(snap.Name),
		Fields: []domain.Field{
			{Label: "Total Bundles", Value: fmt.Sprintf("%d", b.TotalBundles), Inline: true},
			{Label: "Tokens Bundled (M)", Value: fixed2(b.TotalTokensBundledMillions), Inline: true},
			{Label: "Total Bundled %", Value: percent(b.TotalPercentageBundled), Inline: true},
			{Label: "SOL Spent", Value: fixed2(b.TotalSolSpent), Inline: true},
			{Label: "Currently Held %", Value: percent(b.CurrentHeldPercentage), Inline: true},
			{Label: "Bonded", Value: yesNo(b.Bonded), Inline: true},
		},
		FooterText:     footer(providerName),
		SourceProvider: providerName,
	}
}

func title(snap *domain.MarketSnapshot) string {
	switch {
	case snap.Name != "" && snap.Symbol != "":
		return fmt.Sprintf("%s (%s)", snap.Name, snap.Symbol)
	case snap.Name != "":
		return snap.Name
	case snap.Symbol != "":
		return snap.Symbol
	default:
		return "Unknown Token"
	}
}

func footer(providerName string) string {
	return "Data via " + providerName
}

// shortAddress abbreviates a base58 wallet address for display.
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
