// backend/src/models/analysis.go
package models

// Performance categories for a completed wheel cycle, ordered by the first
// matching threshold (largest first).
const (
	CategoryExcellent  = "Excellent"  // totalPnL > 5% of invested capital
	CategoryGood       = "Good"       // totalPnL > 2% of invested capital
	CategoryProfitable = "Profitable" // totalPnL > 0
	CategoryBreakEven  = "Break-Even" // totalPnL exactly 0
	CategoryLoss       = "Loss"       // totalPnL < 0
)

// Assignment is one inferred put-assignment-to-stock-acquisition event.
// CurrentlyHeld, ExitDate and ExitPrice move together: an open assignment
// has no exit data, a closed one has both.
type Assignment struct {
	Symbol             string        `json:"symbol"`
	AssignmentDate     string        `json:"assignmentDate"` // YYYYMMDD
	AssignmentPrice    float64       `json:"assignmentPrice"`
	Quantity           float64       `json:"quantity"`
	PutPremiums        float64       `json:"putPremiums"`
	CallPremiums       float64       `json:"callPremiums"`
	TotalPremiums      float64       `json:"totalPremiums"`
	EffectiveBreakEven float64       `json:"effectiveBreakEven"`
	CurrentlyHeld      bool          `json:"currentlyHeld"`
	ExitDate           *string       `json:"exitDate"`
	ExitPrice          *float64      `json:"exitPrice"`
	RelatedPuts        []TradeRecord `json:"relatedPuts"`    // audit trail, not recomputed on
	RelatedCalls       []TradeRecord `json:"relatedCalls"`   // audit trail
	PutAssignments     []TradeRecord `json:"putAssignments"` // zero-cost assignment legs
}

// CompletedCycle is a closed Assignment extended with derived performance
// metrics. It is a pure projection: recomputed from the assignment set on
// every change, never patched incrementally.
type CompletedCycle struct {
	Assignment
	CapitalGainLoss     float64 `json:"capitalGainLoss"`
	TotalPnL            float64 `json:"totalPnL"`
	InvestedCapital     float64 `json:"investedCapital"`
	TotalReturnPct      float64 `json:"totalReturnPct"`
	DaysDuration        int     `json:"daysDuration"`
	AnnualizedROI       float64 `json:"annualizedROI"`
	PerformanceCategory string  `json:"performanceCategory"`
	PremiumContribution float64 `json:"premiumContribution"`
	CapitalContribution float64 `json:"capitalContribution"`
	PremiumYield        float64 `json:"premiumYield"`
	CapitalYield        float64 `json:"capitalYield"`
	DailyReturn         float64 `json:"dailyReturn"`
}

// PortfolioStats aggregates the current completed-cycle set. An empty set
// produces the all-zero struct, which callers must treat as valid output.
type PortfolioStats struct {
	TotalCompletedCycles int     `json:"totalCompletedCycles"`
	WinningTrades        int     `json:"winningTrades"`
	LosingTrades         int     `json:"losingTrades"`
	WinRate              float64 `json:"winRate"` // percent, 0..100
	TotalPnL             float64 `json:"totalPnL"`
	TotalInvested        float64 `json:"totalInvested"`
	AvgReturnPerTrade    float64 `json:"avgReturnPerTrade"`
	AvgDuration          float64 `json:"avgDuration"` // days
	BestTrade            float64 `json:"bestTrade"`
	WorstTrade           float64 `json:"worstTrade"`
}

// AnalysisStats are the headline counts of an analysis run.
type AnalysisStats struct {
	TotalTrades      int `json:"totalTrades"`
	TotalAssignments int `json:"totalAssignments"`
	CurrentPositions int `json:"currentPositions"`
}

// Analysis is the full computed snapshot: the unit of export, import and
// merge.
type Analysis struct {
	Trades          []TradeRecord    `json:"trades"`
	Assignments     []Assignment     `json:"assignments"`
	CompletedCycles []CompletedCycle `json:"completedCycles"`
	PortfolioStats  PortfolioStats   `json:"portfolioStats"`
	CurrentHoldings []Assignment     `json:"currentHoldings"`
	Stats           AnalysisStats    `json:"stats"`
}

// AnalysisExport is the persisted snapshot envelope. Metadata is an open
// string-keyed bag passed through verbatim, never parsed into typed fields.
type AnalysisExport struct {
	ExportDate      string           `json:"exportDate"`
	ExportVersion   string           `json:"exportVersion"`
	PortfolioStats  PortfolioStats   `json:"portfolioStats"`
	Assignments     []Assignment     `json:"assignments"`
	CompletedCycles []CompletedCycle `json:"completedCycles"`
	CurrentHoldings []Assignment     `json:"currentHoldings"`
	Stats           AnalysisStats    `json:"stats"`
	Metadata        map[string]any   `json:"metadata"`
}

// HoldingView is a currently-held assignment enriched with the covered-call
// strike recommendation derived from the effective break-even.
type HoldingView struct {
	Assignment
	PremiumPerShare float64 `json:"premiumPerShare"`
	MinCallStrike   float64 `json:"minCallStrike"`
	SafeCallStrike  float64 `json:"safeCallStrike"`
}
