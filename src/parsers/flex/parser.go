// backend/src/parsers/flex/parser.go
package flex

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/username/wheelfolio/backend/src/models"
)

// rawTradeConfirm holds the attribute strings of a single <TradeConfirm/>
// element. Pointer fields distinguish an absent attribute from an empty one.
type rawTradeConfirm struct {
	Symbol           *string `xml:"symbol,attr"`
	UnderlyingSymbol *string `xml:"underlyingSymbol,attr"`
	AssetCategory    string  `xml:"assetCategory,attr"`
	BuySell          string  `xml:"buySell,attr"`
	Quantity         string  `xml:"quantity,attr"`
	Price            string  `xml:"price,attr"`
	Proceeds         string  `xml:"proceeds,attr"`
	TradeDate        *string `xml:"tradeDate,attr"`
	Strike           *string `xml:"strike,attr"`
	Expiry           *string `xml:"expiry,attr"`
	PutCall          *string `xml:"putCall,attr"`
	Commission       string  `xml:"commission,attr"`
}

// FlexParser reads Interactive Brokers Flex Query XML exports. Only the
// Trade Confirmations section is consumed; all other elements are ignored.
type FlexParser struct{}

// NewParser creates a new instance of the FlexParser.
func NewParser() *FlexParser {
	return &FlexParser{}
}

// parseFloat parses a numeric attribute with fallback to zero. Partial data
// degrades gracefully; a bad number never rejects the record.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Parse walks the document and converts every <TradeConfirm/> element,
// wherever it is nested, into a TradeRecord in document order. A
// syntactically invalid document fails as a whole.
func (p *FlexParser) Parse(file io.Reader, documentName string) ([]models.TradeRecord, error) {
	decoder := xml.NewDecoder(file)

	var trades []models.TradeRecord
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flex parser: invalid XML: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "TradeConfirm" {
			continue
		}

		var raw rawTradeConfirm
		if err := decoder.DecodeElement(&raw, &se); err != nil {
			return nil, fmt.Errorf("flex parser: invalid TradeConfirm element: %w", err)
		}

		trades = append(trades, models.TradeRecord{
			Symbol:           raw.Symbol,
			UnderlyingSymbol: raw.UnderlyingSymbol,
			AssetCategory:    raw.AssetCategory,
			BuySell:          raw.BuySell,
			Quantity:         parseFloat(raw.Quantity),
			Price:            parseFloat(raw.Price),
			Proceeds:         parseFloat(raw.Proceeds),
			TradeDate:        raw.TradeDate,
			Strike:           raw.Strike,
			Expiry:           raw.Expiry,
			PutCall:          raw.PutCall,
			Commission:       parseFloat(raw.Commission),
			SourceFile:       documentName,
		})
	}

	return trades, nil
}
