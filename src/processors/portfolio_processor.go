// backend/src/processors/portfolio_processor.go
package processors

import (
	"github.com/username/wheelfolio/backend/src/models"
)

type portfolioProcessorImpl struct{}

func NewPortfolioProcessor() PortfolioProcessor {
	return &portfolioProcessorImpl{}
}

// Process is a pure reduction over the completed-cycle set. An empty input
// yields the all-zero stats struct; it never fails.
func (p *portfolioProcessorImpl) Process(cycles []models.CompletedCycle) models.PortfolioStats {
	stats := models.PortfolioStats{
		TotalCompletedCycles: len(cycles),
	}
	if len(cycles) == 0 {
		return stats
	}

	var sumReturnPct, sumDuration float64
	stats.BestTrade = cycles[0].TotalPnL
	stats.WorstTrade = cycles[0].TotalPnL
	for _, c := range cycles {
		if c.TotalPnL > 0 {
			stats.WinningTrades++
		} else if c.TotalPnL < 0 {
			stats.LosingTrades++
		}
		stats.TotalPnL += c.TotalPnL
		stats.TotalInvested += c.InvestedCapital
		sumReturnPct += c.TotalReturnPct
		sumDuration += float64(c.DaysDuration)
		if c.TotalPnL > stats.BestTrade {
			stats.BestTrade = c.TotalPnL
		}
		if c.TotalPnL < stats.WorstTrade {
			stats.WorstTrade = c.TotalPnL
		}
	}

	n := float64(len(cycles))
	stats.WinRate = float64(stats.WinningTrades) / n * 100
	stats.AvgReturnPerTrade = sumReturnPct / n
	stats.AvgDuration = sumDuration / n
	return stats
}
