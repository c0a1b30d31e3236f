package repository

import (
	"regexp"
	"strings"
)

// assetAliases maps normalised asset names, as creators tend to say them,
// onto Yahoo Finance symbols.
var assetAliases = map[string]string{
	"NIFTY":          "^NSEI",
	"NIFTY50":        "^NSEI",
	"NIFTY 50":       "^NSEI",
	"SENSEX":         "^BSESN",
	"BSE SENSEX":     "^BSESN",
	"BANK NIFTY":     "^NSEBANK",
	"BANKNIFTY":      "^NSEBANK",
	"NIFTY BANK":     "^NSEBANK",
	"NIFTY IT":       "^CNXIT",
	"IT INDEX":       "^CNXIT",
	"NIFTY PHARMA":   "^CNXPHARMA",
	"PHARMA INDEX":   "^CNXPHARMA",
	"GOLD":           "GC=F",
	"SOVEREIGN GOLD": "GC=F",
	"SILVER":         "SI=F",
	"CRUDE":          "CL=F",
	"CRUDE OIL":      "CL=F",
	"USD/INR":        "INR=X",
	"USD INR":        "INR=X",
	"USDINR":         "INR=X",
	"DOLLAR":         "INR=X",
	"RUPEE":          "INR=X",
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Already a provider symbol: index (^NSEI), future or FX (GC=F), or
	// exchange-suffixed ticker (RELIANCE.NS).
	providerSymbolPattern = regexp.MustCompile(`^\^|=|\.[A-Z]{1,3}$`)
	equityPattern         = regexp.MustCompile(`^[A-Z0-9&-]+$`)
)

// ResolveSymbol maps a free-text asset name onto a Yahoo Finance symbol.
// Unknown names are treated as NSE equities. It returns "" for names that
// cannot be a ticker.
func ResolveSymbol(asset string) string {
	name := strings.ToUpper(strings.TrimSpace(whitespacePattern.ReplaceAllString(asset, " ")))
	if name == "" {
		return ""
	}
	if symbol, ok := assetAliases[name]; ok {
		return symbol
	}
	if providerSymbolPattern.MatchString(name) {
		return name
	}

	ticker := strings.ReplaceAll(name, " ", "")
	if !equityPattern.MatchString(ticker) {
		return ""
	}
	return ticker + ".NS"
}
