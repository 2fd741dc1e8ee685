// backend/src/processors/cycle_processor.go
package processors

import (
	"math"
	"sort"
	"time"

	"github.com/username/wheelfolio/backend/src/models"
)

const tradeDateLayout = "20060102"

type cycleProcessorImpl struct{}

func NewCycleProcessor() CycleProcessor {
	return &cycleProcessorImpl{}
}

// daysBetween returns the exact calendar-day difference between two
// YYYYMMDD dates. Unparseable dates count as zero days.
func daysBetween(start, end string) int {
	s, err := time.Parse(tradeDateLayout, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(tradeDateLayout, end)
	if err != nil {
		return 0
	}
	return int(e.Sub(s).Hours() / 24)
}

// finiteOrZero substitutes 0 for NaN and infinities so degenerate divisions
// never reach the output model.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// categorize applies the performance thresholds, largest first.
func categorize(totalPnL, investedCapital float64) string {
	switch {
	case totalPnL > investedCapital*0.05:
		return models.CategoryExcellent
	case totalPnL > investedCapital*0.02:
		return models.CategoryGood
	case totalPnL > 0:
		return models.CategoryProfitable
	case totalPnL < 0:
		return models.CategoryLoss
	default:
		return models.CategoryBreakEven
	}
}

// Process projects every closed assignment with a recorded exit price into
// a CompletedCycle, ordered most recent exit first. Cycles without an exit
// date sort as epoch-earliest, never at the top.
func (p *cycleProcessorImpl) Process(assignments []models.Assignment) []models.CompletedCycle {
	var cycles []models.CompletedCycle
	for _, a := range assignments {
		if a.CurrentlyHeld || a.ExitPrice == nil {
			continue
		}

		capitalGainLoss := (*a.ExitPrice - a.AssignmentPrice) * a.Quantity
		totalPnL := a.TotalPremiums + capitalGainLoss
		investedCapital := a.AssignmentPrice * a.Quantity
		totalReturnPct := finiteOrZero(totalPnL / investedCapital * 100)

		days := 0
		if a.ExitDate != nil {
			days = daysBetween(a.AssignmentDate, *a.ExitDate)
		}

		annualizedROI := 0.0
		dailyReturn := 0.0
		if days > 0 {
			annualizedROI = totalReturnPct * (365 / float64(days))
			dailyReturn = totalReturnPct / float64(days)
		}

		cycles = append(cycles, models.CompletedCycle{
			Assignment:          a,
			CapitalGainLoss:     capitalGainLoss,
			TotalPnL:            totalPnL,
			InvestedCapital:     investedCapital,
			TotalReturnPct:      totalReturnPct,
			DaysDuration:        days,
			AnnualizedROI:       annualizedROI,
			PerformanceCategory: categorize(totalPnL, investedCapital),
			PremiumContribution: finiteOrZero(a.TotalPremiums / totalPnL * 100),
			CapitalContribution: finiteOrZero(capitalGainLoss / totalPnL * 100),
			PremiumYield:        finiteOrZero(a.TotalPremiums / investedCapital * 100),
			CapitalYield:        finiteOrZero(capitalGainLoss / investedCapital * 100),
			DailyReturn:         dailyReturn,
		})
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return exitDateOrEpoch(cycles[i]) > exitDateOrEpoch(cycles[j])
	})
	return cycles
}

func exitDateOrEpoch(c models.CompletedCycle) string {
	if c.ExitDate == nil {
		return ""
	}
	return *c.ExitDate
}
