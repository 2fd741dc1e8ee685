// backend/src/processors/assignment_processor_test.go
package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/wheelfolio/backend/src/models"
)

func TestDetect_BasicWheelCycle(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("AAPL", "20240105", 200),
		putAssignmentLeg("AAPL", "20240115"),
		stockBuy("AAPL", "20240115", 100, 50),
		callSale("AAPL", "20240201", 150),
		stockSell("AAPL", "20240315", 100, 55),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)

	a := assignments[0]
	assert.Equal(t, "AAPL", a.Symbol)
	assert.Equal(t, "20240115", a.AssignmentDate)
	assert.Equal(t, 50.0, a.AssignmentPrice)
	assert.Equal(t, 100.0, a.Quantity)
	assert.Equal(t, 200.0, a.PutPremiums)
	assert.Equal(t, 150.0, a.CallPremiums)
	assert.Equal(t, 350.0, a.TotalPremiums)
	assert.InDelta(t, 46.5, a.EffectiveBreakEven, 1e-9)
	assert.False(t, a.CurrentlyHeld)
	require.NotNil(t, a.ExitDate)
	assert.Equal(t, "20240315", *a.ExitDate)
	require.NotNil(t, a.ExitPrice)
	assert.Equal(t, 55.0, *a.ExitPrice)
	assert.Len(t, a.RelatedPuts, 1)
	assert.Len(t, a.RelatedCalls, 1)
	assert.Len(t, a.PutAssignments, 1)
}

func TestDetect_NoExitIsCurrentlyHeld(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("TSLA", "20240201", 300),
		stockBuy("TSLA", "20240215", 100, 200),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.True(t, assignments[0].CurrentlyHeld)
	assert.Nil(t, assignments[0].ExitDate)
	assert.Nil(t, assignments[0].ExitPrice)
}

func TestDetect_OrdinaryBuyIgnored(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	// No put premium and no zero-cost assignment leg: a plain purchase.
	trades := []models.TradeRecord{
		stockBuy("NVDA", "20240110", 50, 600),
		callSale("NVDA", "20240201", 400),
	}

	assert.Empty(t, p.Process(trades))
}

func TestDetect_ZeroCostLegAloneDetects(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	// The premium-collecting sale can live in an older document the user
	// never uploaded. The zero-cost leg alone still marks the assignment.
	trades := []models.TradeRecord{
		putAssignmentLeg("AMD", "20240115"),
		stockBuy("AMD", "20240115", 100, 120),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.Equal(t, 0.0, assignments[0].PutPremiums)
	assert.Equal(t, 120.0, assignments[0].EffectiveBreakEven)
}

func TestDetect_NilDatesNeverQualify(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	dateless := putSale("AAPL", "20240105", 200)
	dateless.TradeDate = nil

	trades := []models.TradeRecord{
		dateless,
		stockBuy("AAPL", "20240115", 100, 50),
	}
	assert.Empty(t, p.Process(trades), "a dateless put sale must not qualify")

	datelessBuy := stockBuy("AAPL", "", 100, 50)
	datelessBuy.TradeDate = nil
	trades = []models.TradeRecord{
		putSale("AAPL", "20240105", 200),
		datelessBuy,
	}
	assert.Empty(t, p.Process(trades), "a dateless buy must not anchor an assignment")
}

// The closing sale is the first stock sale in the symbol group's trade
// order, not the earliest by date. Known behavior; pinned here so a change
// shows up as a test failure rather than a silent drift.
func TestDetect_ClosingSaleUsesGroupOrder(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("AAPL", "20240105", 200),
		stockBuy("AAPL", "20240115", 100, 50),
		stockSell("AAPL", "20240401", 100, 60), // later date, earlier in order
		stockSell("AAPL", "20240301", 100, 55),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	require.NotNil(t, assignments[0].ExitDate)
	assert.Equal(t, "20240401", *assignments[0].ExitDate)
	assert.Equal(t, 60.0, *assignments[0].ExitPrice)
}

// Buys are not partitioned into date ranges, so one put sale can be counted
// toward every assignment whose date it precedes. Pinned deliberately.
func TestDetect_PutPremiumSharedAcrossAssignments(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("AAPL", "20240105", 200),
		stockBuy("AAPL", "20240115", 100, 50),
		stockBuy("AAPL", "20240301", 100, 48),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 2)
	assert.Equal(t, 200.0, assignments[0].PutPremiums)
	assert.Equal(t, 200.0, assignments[1].PutPremiums)
}

func TestDetect_OptionsGroupedByUnderlying(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	// Option symbols differ from the stock symbol; grouping goes through
	// underlyingSymbol.
	put := putSale("AAPL", "20240105", 200)
	put.Symbol = strPtr("AAPL 240115P00050000")

	trades := []models.TradeRecord{
		put,
		stockBuy("AAPL", "20240115", 100, 50),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.Equal(t, 200.0, assignments[0].PutPremiums)
}

func TestDetect_OtherSymbolsExcluded(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("MSFT", "20240105", 500),
		putSale("AAPL", "20240105", 200),
		stockBuy("AAPL", "20240115", 100, 50),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.Equal(t, 200.0, assignments[0].PutPremiums)
}

func TestDetect_PremiumsSumAcrossLegs(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("AAPL", "20240102", 120),
		putSale("AAPL", "20240109", 80),
		stockBuy("AAPL", "20240115", 100, 50),
		callSale("AAPL", "20240201", 90),
		callSale("AAPL", "20240301", 60),
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.Equal(t, 200.0, assignments[0].PutPremiums)
	assert.Equal(t, 150.0, assignments[0].CallPremiums)
	assert.Equal(t, 350.0, assignments[0].TotalPremiums)
	assert.InDelta(t, 46.5, assignments[0].EffectiveBreakEven, 1e-9)
}

func TestDetect_SaleOnAssignmentDateDoesNotClose(t *testing.T) {
	p := NewAssignmentProcessor(testLogger())

	trades := []models.TradeRecord{
		putSale("AAPL", "20240105", 200),
		stockBuy("AAPL", "20240115", 100, 50),
		stockSell("AAPL", "20240115", 100, 51), // same day, not a closing sale
	}

	assignments := p.Process(trades)
	require.Len(t, assignments, 1)
	assert.True(t, assignments[0].CurrentlyHeld)
}
