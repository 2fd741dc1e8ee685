// backend/src/processors/portfolio_processor_test.go
package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/wheelfolio/backend/src/models"
)

func TestPortfolio_EmptySetYieldsZeroStats(t *testing.T) {
	p := NewPortfolioProcessor()

	stats := p.Process(nil)
	assert.Equal(t, models.PortfolioStats{}, stats)
}

func TestPortfolio_Aggregates(t *testing.T) {
	p := NewPortfolioProcessor()

	cycles := []models.CompletedCycle{
		{TotalPnL: 850, InvestedCapital: 5000, TotalReturnPct: 17, DaysDuration: 60},
		{TotalPnL: -150, InvestedCapital: 1000, TotalReturnPct: -15, DaysDuration: 30},
		{TotalPnL: 0, InvestedCapital: 1200, TotalReturnPct: 0, DaysDuration: 10},
	}

	stats := p.Process(cycles)
	assert.Equal(t, 3, stats.TotalCompletedCycles)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 1, stats.LosingTrades)
	assert.InDelta(t, 100.0/3.0, stats.WinRate, 1e-9)
	assert.Equal(t, 700.0, stats.TotalPnL)
	assert.Equal(t, 7200.0, stats.TotalInvested)
	assert.InDelta(t, 2.0/3.0, stats.AvgReturnPerTrade, 1e-9)
	assert.InDelta(t, 100.0/3.0, stats.AvgDuration, 1e-9)
	assert.Equal(t, 850.0, stats.BestTrade)
	assert.Equal(t, -150.0, stats.WorstTrade)
}

func TestPortfolio_AllLossesSeedBestFromFirst(t *testing.T) {
	p := NewPortfolioProcessor()

	cycles := []models.CompletedCycle{
		{TotalPnL: -50, InvestedCapital: 1000},
		{TotalPnL: -200, InvestedCapital: 1000},
	}

	stats := p.Process(cycles)
	assert.Equal(t, 0.0, stats.WinRate)
	assert.Equal(t, -50.0, stats.BestTrade, "best trade must come from the data, not a zero seed")
	assert.Equal(t, -200.0, stats.WorstTrade)
}
