// Package main resolves one identifier from the command line and prints the
// rendered card fields. Useful for smoke-testing provider wiring without
// running the gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tokencard/internal/classify"
	"tokencard/internal/normalize"
	"tokencard/internal/provider"
	"tokencard/internal/router"
)

func main() {
	text := flag.String("text", "", "Text to scan for an address or token name")
	intent := flag.String("intent", "market", "Resolution intent: market or wallet")
	timeout := flag.Duration("timeout", provider.DefaultTimeout, "Provider request timeout")

	dexScreenerURL := flag.String("dexscreener-url", envOr("DEXSCREENER_URL", "https://api.dexscreener.com"), "Market aggregator base URL")
	pumpFunURL := flag.String("pumpfun-url", envOr("PUMPFUN_URL", "https://frontend-api.pump.fun"), "Coin name lookup base URL")
	walletURL := flag.String("wallet-analytics-url", os.Getenv("WALLET_ANALYTICS_URL"), "Wallet bundle analytics base URL")

	flag.Parse()

	logger := log.New(os.Stderr, "[resolve] ", log.LstdFlags)

	if *text == "" {
		logger.Fatal("--text is required")
	}

	var routeIntent router.Intent
	switch *intent {
	case "market":
		routeIntent = router.IntentMarket
	case "wallet":
		routeIntent = router.IntentWallet
	default:
		logger.Fatalf("unknown intent %q (use market or wallet)", *intent)
	}

	id, ok := classify.New().Primary(*text)
	if !ok {
		logger.Fatal("no address or token name found in text")
	}
	logger.Printf("Identifier: %s (%s)", id.Raw, id.Kind)

	r := router.New(router.Options{
		Aggregator:      provider.NewDexScreener(*dexScreenerURL, provider.WithTimeout(*timeout)),
		NameLookup:      provider.NewPumpFun(*pumpFunURL, provider.WithTimeout(*timeout)),
		WalletAnalytics: provider.NewWalletAnalytics(*walletURL, provider.WithTimeout(*timeout)),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, providerName, err := r.Route(ctx, id, routeIntent)
	if err != nil {
		logger.Fatalf("resolve failed: %v", err)
	}

	vm := normalize.Snapshot(snap, providerName)

	fmt.Println(vm.Title)
	if vm.LinkURL != "" {
		fmt.Println(vm.LinkURL)
	}
	for _, f := range vm.Fields {
		fmt.Printf("%-30s %s\n", f.Label+":", f.Value)
	}
	fmt.Println(vm.FooterText)
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
