// backend/src/processors/assignment_processor.go
package processors

import (
	"log/slog"
	"math"

	"github.com/username/wheelfolio/backend/src/models"
)

// assignmentProcessorImpl reconstructs put-assignment events. There is no
// authoritative field linking a put assignment to the resulting stock
// purchase; the link is inferred from dates, prices and zero-cost option
// legs. The processor is a pure function over an immutable trade list, with
// the heuristic rules kept as named predicates so each is testable on its
// own.
type assignmentProcessorImpl struct {
	log *slog.Logger
}

// NewAssignmentProcessor creates an assignment processor. The logger is
// injected so the pipeline stays a pure function of its inputs.
func NewAssignmentProcessor(log *slog.Logger) AssignmentProcessor {
	return &assignmentProcessorImpl{log: log}
}

// sameNullable compares two nullable wire strings: equal when both are
// absent or both carry the same value.
func sameNullable(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// dateOf returns the trade date and whether one is present. A missing date
// never qualifies for any predicate below.
func dateOf(t models.TradeRecord) (string, bool) {
	if t.TradeDate == nil || *t.TradeDate == "" {
		return "", false
	}
	return *t.TradeDate, true
}

// isCandidateStockBuy recognizes a stock purchase that may have resulted
// from a put assignment.
func isCandidateStockBuy(t models.TradeRecord) bool {
	return t.IsStock() && t.BuySell == models.SideBuy && t.Quantity > 0
}

// inSymbolGroup reports whether t belongs to the candidate buy's symbol
// group: symbol or underlying matches the buy's symbol, and t itself has a
// usable symbol.
func inSymbolGroup(t, buy models.TradeRecord) bool {
	if !t.HasSymbol() {
		return false
	}
	return sameNullable(t.Symbol, buy.Symbol) || sameNullable(t.UnderlyingSymbol, buy.Symbol)
}

// isQualifyingPutSale recognizes premium collected by selling puts on or
// before the assignment date.
func isQualifyingPutSale(t, buy models.TradeRecord) bool {
	tDate, tOK := dateOf(t)
	buyDate, buyOK := dateOf(buy)
	return t.IsPut() && t.BuySell == models.SideSell && t.Proceeds > 0 &&
		tOK && buyOK && tDate <= buyDate
}

// isPutAssignmentLeg recognizes the zero-cost put buy that closes a short
// put via assignment on the assignment date. It is a detection signal only;
// its proceeds are never summed.
func isPutAssignmentLeg(t, buy models.TradeRecord) bool {
	tDate, tOK := dateOf(t)
	buyDate, buyOK := dateOf(buy)
	return t.IsPut() && t.BuySell == models.SideBuy && t.Proceeds == 0 &&
		tOK && buyOK && tDate == buyDate
}

// isQualifyingCallSale recognizes covered-call premium collected after the
// assignment date.
func isQualifyingCallSale(t, buy models.TradeRecord) bool {
	tDate, tOK := dateOf(t)
	buyDate, buyOK := dateOf(buy)
	return t.IsCall() && t.BuySell == models.SideSell && t.Proceeds > 0 &&
		tOK && buyOK && tDate > buyDate
}

// isClosingStockSale recognizes a stock sale after the assignment date. The
// first match in group order closes the position; see Process.
func isClosingStockSale(t, buy models.TradeRecord) bool {
	tDate, tOK := dateOf(t)
	buyDate, buyOK := dateOf(buy)
	return t.IsStock() && t.BuySell == models.SideSell &&
		tOK && buyOK && tDate > buyDate
}

// Process evaluates every qualifying stock buy independently; a symbol with
// repeated wheel cycles yields one assignment per buy. Because buys are not
// partitioned into date ranges, a put sale may be claimed by more than one
// assignment when the data is ambiguous; that is preserved as-is.
//
// The closing trade is the FIRST stock sale in the symbol group's trade
// order, which is document order, not necessarily the earliest by date.
// Preserved deliberately; see the known-risk note in the test suite.
func (p *assignmentProcessorImpl) Process(trades []models.TradeRecord) []models.Assignment {
	p.log.Debug("reconstructing assignments", "trades", len(trades))

	var assignments []models.Assignment
	for _, buy := range trades {
		if !isCandidateStockBuy(buy) {
			continue
		}

		var symbolTrades []models.TradeRecord
		for _, t := range trades {
			if inSymbolGroup(t, buy) {
				symbolTrades = append(symbolTrades, t)
			}
		}

		var putSales, putLegs, callSales []models.TradeRecord
		var closing *models.TradeRecord
		for i, t := range symbolTrades {
			switch {
			case isQualifyingPutSale(t, buy):
				putSales = append(putSales, t)
			case isPutAssignmentLeg(t, buy):
				putLegs = append(putLegs, t)
			case isQualifyingCallSale(t, buy):
				callSales = append(callSales, t)
			case isClosingStockSale(t, buy) && closing == nil:
				closing = &symbolTrades[i]
			}
		}

		// A stock buy with neither put premium nor an assignment leg is
		// an ordinary purchase, out of scope.
		if len(putSales) == 0 && len(putLegs) == 0 {
			continue
		}

		var putPremiums, callPremiums float64
		for _, t := range putSales {
			putPremiums += math.Abs(t.Proceeds)
		}
		for _, t := range callSales {
			callPremiums += math.Abs(t.Proceeds)
		}
		totalPremiums := putPremiums + callPremiums

		buyDate, _ := dateOf(buy)
		symbol := ""
		if buy.Symbol != nil {
			symbol = *buy.Symbol
		}

		a := models.Assignment{
			Symbol:             symbol,
			AssignmentDate:     buyDate,
			AssignmentPrice:    buy.Price,
			Quantity:           buy.Quantity,
			PutPremiums:        putPremiums,
			CallPremiums:       callPremiums,
			TotalPremiums:      totalPremiums,
			EffectiveBreakEven: buy.Price - totalPremiums/buy.Quantity,
			CurrentlyHeld:      closing == nil,
			RelatedPuts:        putSales,
			RelatedCalls:       callSales,
			PutAssignments:     putLegs,
		}
		if closing != nil {
			a.ExitDate = closing.TradeDate
			exitPrice := closing.Price
			a.ExitPrice = &exitPrice
		}

		p.log.Debug("assignment detected",
			"symbol", a.Symbol,
			"assignmentDate", a.AssignmentDate,
			"putSales", len(putSales),
			"putLegs", len(putLegs),
			"callSales", len(callSales),
			"currentlyHeld", a.CurrentlyHeld,
		)
		assignments = append(assignments, a)
	}

	p.log.Debug("reconstruction complete", "assignments", len(assignments))
	return assignments
}
