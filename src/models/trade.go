// backend/src/models/trade.go
package models

// Asset categories and trade sides as they appear on the Flex Query wire.
const (
	AssetCategoryStock  = "STK"
	AssetCategoryOption = "OPT"

	SideBuy  = "BUY"
	SideSell = "SELL"

	PutCallPut  = "P"
	PutCallCall = "C"
)

// TradeRecord is one executed fill from a trade confirmation document.
// String attributes that were absent on the wire stay nil; that distinction
// is part of the deduplication identity, so nil must not collapse to "".
// Records are immutable once parsed.
type TradeRecord struct {
	ID               int64   `json:"id,omitempty"` // Database primary key
	Symbol           *string `json:"symbol"`
	UnderlyingSymbol *string `json:"underlyingSymbol"`
	AssetCategory    string  `json:"assetCategory"` // "STK" or "OPT"
	BuySell          string  `json:"buySell"`       // "BUY" or "SELL"
	Quantity         float64 `json:"quantity"`      // always a positive count
	Price            float64 `json:"price"`
	Proceeds         float64 `json:"proceeds"`  // signed: positive = cash received
	TradeDate        *string `json:"tradeDate"` // calendar date, YYYYMMDD
	Strike           *string `json:"strike"`
	Expiry           *string `json:"expiry"`
	PutCall          *string `json:"putCall"` // "P", "C", or nil for stock
	Commission       float64 `json:"commission"`
	SourceFile       string  `json:"sourceFile,omitempty"`
}

// TradeIdentity is the deduplication key for a fill. Commission, price,
// strike and expiry are deliberately excluded: two fills differing only in
// those fields count as the same trade and the first one seen wins.
type TradeIdentity struct {
	Symbol    string
	HasSymbol bool
	TradeDate string
	HasDate   bool
	Proceeds  float64
	BuySell   string
	Quantity  float64
}

// Identity returns the dedup key tuple for the record.
func (t TradeRecord) Identity() TradeIdentity {
	key := TradeIdentity{
		Proceeds: t.Proceeds,
		BuySell:  t.BuySell,
		Quantity: t.Quantity,
	}
	if t.Symbol != nil {
		key.Symbol = *t.Symbol
		key.HasSymbol = true
	}
	if t.TradeDate != nil {
		key.TradeDate = *t.TradeDate
		key.HasDate = true
	}
	return key
}

// IsStock reports whether the fill is a stock leg.
func (t TradeRecord) IsStock() bool { return t.AssetCategory == AssetCategoryStock }

// IsOption reports whether the fill is an option leg.
func (t TradeRecord) IsOption() bool { return t.AssetCategory == AssetCategoryOption }

// IsPut reports whether the fill is a put option leg.
func (t TradeRecord) IsPut() bool {
	return t.IsOption() && t.PutCall != nil && *t.PutCall == PutCallPut
}

// IsCall reports whether the fill is a call option leg.
func (t TradeRecord) IsCall() bool {
	return t.IsOption() && t.PutCall != nil && *t.PutCall == PutCallCall
}

// HasSymbol reports whether the record carries a non-empty symbol.
func (t TradeRecord) HasSymbol() bool {
	return t.Symbol != nil && *t.Symbol != ""
}
