// backend/src/processors/dedup_processor_test.go
package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/wheelfolio/backend/src/models"
)

func TestDedup_FirstOccurrenceWins(t *testing.T) {
	p := NewDedupProcessor()

	first := stockBuy("MSFT", "20240110", 100, 400)
	first.Commission = -1.0
	// Same fill re-exported with a corrected commission: identical identity
	// tuple, different commission. The first-seen record must survive.
	second := stockBuy("MSFT", "20240110", 100, 400)
	second.Commission = -1.5

	out := p.Process([]models.TradeRecord{first, second})
	require.Len(t, out, 1)
	assert.Equal(t, -1.0, out[0].Commission)
}

func TestDedup_PreservesInputOrder(t *testing.T) {
	p := NewDedupProcessor()

	trades := []models.TradeRecord{
		stockBuy("AAPL", "20240110", 100, 50),
		putSale("AAPL", "20240105", 200),
		stockBuy("AAPL", "20240110", 100, 50), // duplicate
		stockSell("AAPL", "20240301", 100, 55),
	}

	out := p.Process(trades)
	require.Len(t, out, 3)
	assert.Equal(t, models.SideBuy, out[0].BuySell)
	assert.Equal(t, models.AssetCategoryOption, out[1].AssetCategory)
	assert.Equal(t, models.SideSell, out[2].BuySell)
}

func TestDedup_Idempotent(t *testing.T) {
	p := NewDedupProcessor()

	trades := []models.TradeRecord{
		stockBuy("AAPL", "20240110", 100, 50),
		putSale("AAPL", "20240105", 200),
	}

	once := p.Process(trades)
	twice := p.Process(once)
	assert.Equal(t, once, twice)
}

func TestDedup_NilSymbolDistinctFromEmpty(t *testing.T) {
	p := NewDedupProcessor()

	withNil := models.TradeRecord{
		AssetCategory: models.AssetCategoryStock,
		BuySell:       models.SideBuy,
		Quantity:      100,
		TradeDate:     strPtr("20240110"),
	}
	withEmpty := withNil
	withEmpty.Symbol = strPtr("")

	out := p.Process([]models.TradeRecord{withNil, withEmpty})
	assert.Len(t, out, 2)
}

func TestDedup_EmptyInput(t *testing.T) {
	p := NewDedupProcessor()
	assert.Empty(t, p.Process(nil))
}
